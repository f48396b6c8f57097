package viewer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/msalah0e/agviewer/internal/canvas"
	"github.com/msalah0e/agviewer/internal/creation"
	"github.com/msalah0e/agviewer/internal/cypher"
	"github.com/msalah0e/agviewer/internal/shortcut"
)

func vertex(id, label string) map[string]any {
	return map[string]any{"id": id, "label": label, "properties": map[string]any{"name": id}}
}

func rel(id, start, end string) map[string]any {
	return map[string]any{"id": id, "label": "KNOWS", "start": start, "end": end, "properties": map[string]any{}}
}

var cols = []string{"S", "R", "T"}

// scripted answers queries from a table and records what it was sent.
type scripted struct {
	mu      sync.Mutex
	answers map[string]*cypher.Result
	sent    []string
	closed  bool
}

func (s *scripted) Submit(_ context.Context, cmd string) (*cypher.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, cmd)
	res, ok := s.answers[cmd]
	if !ok {
		return nil, errors.New("unexpected query")
	}
	return res, nil
}

func (s *scripted) Close(context.Context) error {
	s.closed = true
	return nil
}

const pairQuery = "MATCH (S)-[R]->(T) RETURN S, R, T"

func newViewer(t *testing.T) (*Viewer, *scripted) {
	t.Helper()
	sub := &scripted{answers: map[string]*cypher.Result{
		pairQuery: {Columns: cols, Rows: []map[string]any{
			{"S": vertex("1", "Person"), "R": rel("10", "1", "2"), "T": vertex("2", "Person")},
		}},
		cypher.ExpandQuery("1"): {Columns: cols, Rows: []map[string]any{
			{"S": vertex("1", "Person"), "R": rel("11", "1", "3"), "T": vertex("3", "City")},
		}},
	}}
	v, err := New(Options{
		Submitter: sub,
		Database:  shortcut.Database{Flavor: shortcut.FlavorAGE, Graph: "g"},
		Layout:    "grid",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { v.Engine.Unmount() })
	return v, sub
}

func TestNewRejectsUnknownLayout(t *testing.T) {
	if _, err := New(Options{Layout: "spiral"}); err == nil {
		t.Error("expected an error for an unknown layout")
	}
}

func TestQueryRendersAndFillsLegend(t *testing.T) {
	v, sub := newViewer(t)

	if err := v.Query(context.Background(), pairQuery); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if v.Engine.State() != canvas.StateReady {
		t.Errorf("expected ready engine, got %s", v.Engine.State())
	}
	if st := v.Engine.Stats(); st.NodeCount != 2 || st.EdgeCount != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
	nodes, edges := v.Labels()
	if len(nodes) != 1 || nodes[0] != "Person" || len(edges) != 1 || edges[0] != "KNOWS" {
		t.Errorf("unexpected legend labels %v %v", nodes, edges)
	}
	if h := v.Command.History(); len(h) != 1 || h[0] != pairQuery {
		t.Errorf("history should record the query, got %v", h)
	}
	if len(sub.sent) != 1 {
		t.Errorf("expected one submission, got %d", len(sub.sent))
	}
}

func TestQueryErrors(t *testing.T) {
	v, _ := newViewer(t)
	if err := v.Query(context.Background(), "  "); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("expected ErrEmptyCommand, got %v", err)
	}
	if err := v.Query(context.Background(), "MATCH (n) RETURN n"); err == nil {
		t.Error("submitter failure should surface")
	}
	if v.Engine.State() != canvas.StateUnmounted {
		t.Error("a failed query must not render anything")
	}
}

func TestExpandWaitMergesAndExtendsLegend(t *testing.T) {
	v, _ := newViewer(t)
	ctx := context.Background()
	if err := v.Query(ctx, pairQuery); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if _, err := v.ExpandWait(ctx, "1"); err != nil {
		t.Fatalf("ExpandWait failed: %v", err)
	}
	if !v.Engine.Has("3") || !v.Engine.Has("11") {
		t.Error("expansion should add node 3 and edge 11")
	}
	nodes, _ := v.Labels()
	if len(nodes) != 2 {
		t.Errorf("legend should now hold Person and City, got %v", nodes)
	}

	notices, err := v.ExpandWait(ctx, "1")
	if err != nil {
		t.Fatalf("second ExpandWait failed: %v", err)
	}
	if len(notices) != 1 || notices[0] != canvas.NoticeNoData {
		t.Errorf("expanding again should report no new data, got %v", notices)
	}
}

func TestSetLayout(t *testing.T) {
	v, _ := newViewer(t)
	if err := v.SetLayout("spiral"); err == nil {
		t.Error("expected unknown layout error")
	}
	if err := v.SetLayout("circle"); err != nil {
		t.Fatalf("SetLayout before render failed: %v", err)
	}
	if err := v.Query(context.Background(), pairQuery); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got := v.Engine.Layout().Name; got != "circle" {
		t.Errorf("render should use the chosen layout, got %q", got)
	}
	if err := v.SetLayout("dagre"); err != nil {
		t.Fatalf("SetLayout failed: %v", err)
	}
	if got := v.Engine.Layout().Name; got != "dagre" {
		t.Errorf("expected dagre, got %q", got)
	}
}

func TestShortcutsWriteCommand(t *testing.T) {
	v, _ := newViewer(t)

	q := v.ShowLabel(shortcut.KindNode, "Person")
	if !strings.Contains(q, "MATCH (V:Person)") || v.Command.Command() != q {
		t.Errorf("label shortcut not written: %q", v.Command.Command())
	}
	q = v.ShowProperty(shortcut.KeyEdge, "since")
	if v.Command.Command() != q {
		t.Errorf("property shortcut not written: %q", v.Command.Command())
	}
	if v.ShowProperty("x", "since") != "" || v.Command.Command() != q {
		t.Error("unknown key type must leave the buffer alone")
	}
}

func TestEdgeDrawOpensForm(t *testing.T) {
	v, _ := newViewer(t)
	if err := v.Query(context.Background(), pairQuery); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if err := v.Engine.BeginEdgeDraw("2"); err != nil {
		t.Fatalf("BeginEdgeDraw failed: %v", err)
	}
	if _, err := v.Engine.CompleteEdgeDraw("2", "1"); err != nil {
		t.Fatalf("CompleteEdgeDraw failed: %v", err)
	}
	if v.Workflow.Mode() != creation.ModeEdge {
		t.Fatalf("expected edge form open, got %s", v.Workflow.Mode())
	}
	if v.Workflow.Edge.OriginID != "2" || v.Workflow.Edge.TargetID != "1" {
		t.Errorf("form not prefilled: %+v", v.Workflow.Edge)
	}

	v.Workflow.SetLabel("LIKES")
	text, err := v.Workflow.Confirm()
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if v.Command.Command() != text {
		t.Errorf("confirmed text should land in the buffer, got %q", v.Command.Command())
	}
	if _, ok := v.Engine.PendingDraft(); ok {
		t.Error("confirm should clear the provisional edge")
	}
}

func TestCloseReleasesSubmitter(t *testing.T) {
	v, sub := newViewer(t)
	if err := v.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !sub.closed {
		t.Error("Close should close the submitter")
	}
	if v.Engine.State() != canvas.StateUnmounted {
		t.Error("Close should unmount the engine")
	}
}

// elementIDs addresses nodes the way a Bolt backend does.
type elementIDs struct{ *scripted }

func (elementIDs) MatchNode(alias, id string) string {
	return "elementId(" + alias + ")='" + id + "'"
}

func TestEdgeFormUsesBackendMatcher(t *testing.T) {
	sub := &scripted{answers: map[string]*cypher.Result{
		pairQuery: {Columns: cols, Rows: []map[string]any{
			{"S": vertex("4:x:1", "Person"), "R": rel("5:x:9", "4:x:1", "4:x:2"), "T": vertex("4:x:2", "Person")},
		}},
	}}
	v, err := New(Options{Submitter: elementIDs{sub}, Layout: "grid"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { v.Engine.Unmount() })
	if err := v.Query(context.Background(), pairQuery); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if err := v.Engine.BeginEdgeDraw("4:x:2"); err != nil {
		t.Fatalf("BeginEdgeDraw failed: %v", err)
	}
	if _, err := v.Engine.CompleteEdgeDraw("4:x:2", "4:x:1"); err != nil {
		t.Fatalf("CompleteEdgeDraw failed: %v", err)
	}
	v.Workflow.SetLabel("LIKES")
	text, err := v.Workflow.Confirm()
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if !strings.Contains(text, "WHERE elementId(a)='4:x:2' AND elementId(b)='4:x:1'") {
		t.Errorf("edge statement should match by element id, got %q", text)
	}
}

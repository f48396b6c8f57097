package canvas

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/msalah0e/agviewer/internal/cypher"
	"github.com/msalah0e/agviewer/internal/graph"
	"github.com/msalah0e/agviewer/internal/layout"
	"github.com/msalah0e/agviewer/internal/transform"
)

func vertex(id string) map[string]any {
	return map[string]any{"id": id, "label": "Person", "properties": map[string]any{"name": id}}
}

func rel(id, start, end string) map[string]any {
	return map[string]any{"id": id, "label": "KNOWS", "start": start, "end": end, "properties": map[string]any{}}
}

func row(s, r, t map[string]any) map[string]any {
	return map[string]any{"S": s, "R": r, "T": t}
}

var cols = []string{"S", "R", "T"}

func neighborsOfA() []map[string]any {
	return []map[string]any{
		row(vertex("A"), rel("ax", "A", "X"), vertex("X")),
		row(vertex("A"), rel("ay", "A", "Y"), vertex("Y")),
		row(vertex("A"), rel("ab", "A", "B"), vertex("B")),
	}
}

const eps = 1e-9

func near(a, b layout.Point) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

func TestExpandKeepsFocalPosition(t *testing.T) {
	eng, rec := newEngine(t, star())
	before := eng.Positions()

	added, err := eng.Expand("A", cols, neighborsOfA())
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(added) != 4 {
		t.Fatalf("expected X, Y, ax, ay added, got %v", added)
	}

	after := eng.Positions()
	if !near(before["A"], after["A"]) {
		t.Errorf("focal node moved from %+v to %+v", before["A"], after["A"])
	}
	for _, id := range []string{"C", "D"} {
		if !near(before[id], after[id]) {
			t.Errorf("%s is outside the target set but moved from %+v to %+v", id, before[id], after[id])
		}
	}
	if near(after["X"], after["A"]) || near(after["Y"], after["A"]) {
		t.Error("new neighbors should be laid out away from the centre")
	}

	for _, id := range added {
		el, _ := eng.Get(id)
		if el.HasClass(transform.ClassNew) {
			t.Errorf("%s still tagged new", id)
		}
		if !eng.IsBound(id) {
			t.Errorf("%s should be bound", id)
		}
		if eng.IsFrozen(id) {
			t.Errorf("%s should be unfrozen", id)
		}
	}
	if eng.IsFrozen("A") || eng.IsFrozen("D") {
		t.Error("existing nodes should be unfrozen after expansion")
	}
	if len(rec.legends) != 1 {
		t.Errorf("expected one legend update, got %d", len(rec.legends))
	}
}

func TestExpandNothingNew(t *testing.T) {
	eng, rec := newEngine(t, star())
	before := eng.Snapshot()
	positions := eng.Positions()

	rows := []map[string]any{row(vertex("A"), rel("ab", "A", "B"), vertex("B"))}
	added, err := eng.Expand("A", cols, rows)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if added != nil {
		t.Errorf("expected no additions, got %v", added)
	}
	if len(rec.notices) != 1 || rec.notices[0] != NoticeNoData {
		t.Errorf("expected %q notice, got %v", NoticeNoData, rec.notices)
	}

	after := eng.Snapshot()
	if after.Len() != before.Len() {
		t.Errorf("model changed: %d -> %d elements", before.Len(), after.Len())
	}
	for id, p := range eng.Positions() {
		if p != positions[id] {
			t.Errorf("%s moved on a no-op expansion", id)
		}
	}
	if len(rec.legends) != 0 {
		t.Error("no legend update expected")
	}
}

func TestExpandUnknownCenter(t *testing.T) {
	eng, _ := newEngine(t, star())
	if _, err := eng.Expand("Z", cols, neighborsOfA()); !errors.Is(err, graph.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type fakeSubmitter struct {
	mu      sync.Mutex
	queries []string
	release chan struct{}
	result  *cypher.Result
	err     error
}

func (f *fakeSubmitter) Submit(ctx context.Context, cmd string) (*cypher.Result, error) {
	f.mu.Lock()
	f.queries = append(f.queries, cmd)
	f.mu.Unlock()
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.result, f.err
}

func engineWith(t *testing.T, sub cypher.Submitter) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	eng := New(Options{Submitter: sub, Notifier: rec, Legend: rec, Alerts: rec})
	if err := eng.Render(star(), layout.Lookup("grid")); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return eng, rec
}

func waitOne(t *testing.T, eng *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := eng.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
}

func TestRequestExpansion(t *testing.T) {
	sub := &fakeSubmitter{result: &cypher.Result{Columns: cols, Rows: neighborsOfA()}}
	eng, _ := engineWith(t, sub)

	if err := eng.RequestExpansion(context.Background(), "A"); err != nil {
		t.Fatalf("RequestExpansion failed: %v", err)
	}
	waitOne(t, eng)

	if !eng.Has("X") || !eng.Has("ay") {
		t.Error("expansion result should be merged")
	}
	if eng.Pending() != 0 {
		t.Errorf("expected no pending requests, got %d", eng.Pending())
	}
	want := "MATCH (S)-[R]-(T) WHERE id(S) = 'A' RETURN S, R, T"
	if len(sub.queries) != 1 || sub.queries[0] != want {
		t.Errorf("unexpected queries %v", sub.queries)
	}
}

func TestRequestExpansionGuard(t *testing.T) {
	sub := &fakeSubmitter{release: make(chan struct{}), result: &cypher.Result{Columns: cols, Rows: neighborsOfA()}}
	eng, _ := engineWith(t, sub)

	if err := eng.RequestExpansion(context.Background(), "A"); err != nil {
		t.Fatalf("RequestExpansion failed: %v", err)
	}
	if err := eng.RequestExpansion(context.Background(), "A"); !errors.Is(err, ErrExpansionPending) {
		t.Fatalf("expected ErrExpansionPending, got %v", err)
	}
	if err := eng.RequestExpansion(context.Background(), "B"); err != nil {
		t.Fatalf("a different focal node should not be blocked: %v", err)
	}

	// The canvas stays interactive while fetches are outstanding.
	if err := eng.Click("D"); err != nil {
		t.Fatalf("Click during fetch failed: %v", err)
	}

	close(sub.release)
	waitOne(t, eng)
	waitOne(t, eng)
	if eng.Pending() != 0 {
		t.Errorf("expected no pending requests, got %d", eng.Pending())
	}
	if err := eng.RequestExpansion(context.Background(), "A"); err != nil {
		t.Errorf("guard should release after completion: %v", err)
	}
}

func TestExpansionFailureAlerts(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("connection refused")}
	eng, rec := engineWith(t, sub)
	before := eng.Stats()

	if err := eng.RequestExpansion(context.Background(), "A"); err != nil {
		t.Fatalf("RequestExpansion failed: %v", err)
	}
	waitOne(t, eng)

	if len(rec.alerts) != 1 || !strings.Contains(rec.alerts[0].Error(), "connection refused") {
		t.Errorf("expected alert, got %v", rec.alerts)
	}
	if eng.Stats() != before {
		t.Error("failed expansion must not mutate the model")
	}
}

func TestExpansionDiscardedOnUnmount(t *testing.T) {
	sub := &fakeSubmitter{release: make(chan struct{}), result: &cypher.Result{Columns: cols, Rows: neighborsOfA()}}
	eng, rec := engineWith(t, sub)

	if err := eng.RequestExpansion(context.Background(), "A"); err != nil {
		t.Fatalf("RequestExpansion failed: %v", err)
	}
	eng.Unmount()
	close(sub.release)

	if err := eng.Wait(context.Background()); !errors.Is(err, ErrUnmounted) {
		t.Fatalf("expected ErrUnmounted, got %v", err)
	}
	eng.Pump()
	if eng.Has("X") {
		t.Error("result merged into an unmounted canvas")
	}
	if len(rec.alerts) != 0 {
		t.Errorf("no alerts expected after unmount, got %v", rec.alerts)
	}
}

func TestExpansionDiscardedAfterRepopulate(t *testing.T) {
	sub := &fakeSubmitter{release: make(chan struct{}), result: &cypher.Result{Columns: cols, Rows: neighborsOfA()}}
	eng, _ := engineWith(t, sub)

	if err := eng.RequestExpansion(context.Background(), "A"); err != nil {
		t.Fatalf("RequestExpansion failed: %v", err)
	}
	if err := eng.Render(star(), layout.Lookup("grid")); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	close(sub.release)
	waitOne(t, eng)

	if eng.Has("X") {
		t.Error("stale expansion merged into a repopulated model")
	}
}

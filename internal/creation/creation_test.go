package creation

import (
	"errors"
	"testing"
)

func TestCompileEdge(t *testing.T) {
	got, err := CompileEdge(EdgeForm{
		Label:      "KNOWS",
		OriginID:   "1",
		TargetID:   "2",
		Properties: []Property{{Key: "since", Value: "2020"}},
	})
	if err != nil {
		t.Fatalf("CompileEdge failed: %v", err)
	}
	want := "MATCH (a),(b) WHERE id(a)=1 AND id(b)=2 CREATE (a)-[r:KNOWS {since: '2020'}]->(b) RETURN a,r,b"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestCompileEdgeNoProperties(t *testing.T) {
	got, err := CompileEdge(EdgeForm{Label: "KNOWS", OriginID: "1", TargetID: "2"})
	if err != nil {
		t.Fatalf("CompileEdge failed: %v", err)
	}
	want := "MATCH (a),(b) WHERE id(a)=1 AND id(b)=2 CREATE (a)-[r:KNOWS]->(b) RETURN a,r,b"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestCompileNode(t *testing.T) {
	got, err := CompileNode(NodeForm{Label: "Person", Properties: []Property{{Key: "name", Value: "Ann"}}})
	if err != nil {
		t.Fatalf("CompileNode failed: %v", err)
	}
	if want := "CREATE (n:Person {name: 'Ann'}) RETURN n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got, _ = CompileNode(NodeForm{Label: "Person"})
	if want := "CREATE (n:Person) RETURN n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompileEscapesQuotes(t *testing.T) {
	got, _ := CompileNode(NodeForm{Label: "Person", Properties: []Property{{Key: "name", Value: "O'Brien"}}})
	if want := `CREATE (n:Person {name: 'O\'Brien'}) RETURN n`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestValidation(t *testing.T) {
	_, err := CompileEdge(EdgeForm{
		Label:      " ",
		Properties: []Property{{Key: "since"}},
	})
	if !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("expected ErrInvalidForm, got %v", err)
	}
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %T", err)
	}
	want := map[string]string{
		"Label":               "Missing edge label",
		"OriginID":            "Missing origin node ID",
		"TargetID":            "Missing destination node ID",
		"Properties[0].Value": "Missing property value",
	}
	if len(fe) != len(want) {
		t.Fatalf("expected %d field errors, got %v", len(want), fe)
	}
	for field, msg := range want {
		if got, ok := fe.Message(field); !ok || got != msg {
			t.Errorf("%s: got %q, want %q", field, got, msg)
		}
	}

	_, err = CompileNode(NodeForm{Properties: []Property{{Value: "x"}}})
	fe = nil
	errors.As(err, &fe)
	if msg, _ := fe.Message("Label"); msg != "Missing node label" {
		t.Errorf("expected node label message, got %q", msg)
	}
	if msg, _ := fe.Message("Properties[0].Key"); msg != "Missing property key" {
		t.Errorf("expected property key message, got %q", msg)
	}
}

type commandBuffer struct{ text string }

func (c *commandBuffer) SetCommand(text string) { c.text = text }

type draftCounter struct{ cleared int }

func (d *draftCounter) ClearDraft() { d.cleared++ }

func TestWorkflowConfirmEdge(t *testing.T) {
	buf := &commandBuffer{}
	drafts := &draftCounter{}
	w := NewWorkflow(buf, drafts)

	w.OpenEdge("1", "2")
	if w.Mode() != ModeEdge || w.Edge.OriginID != "1" || w.Edge.TargetID != "2" {
		t.Fatalf("edge form not prefilled: %+v", w.Edge)
	}

	if _, err := w.Confirm(); err == nil {
		t.Fatal("confirm without label should fail")
	}
	if !w.Open() || len(w.Errors) == 0 {
		t.Error("a failed confirm keeps the form open with errors")
	}
	if buf.text != "" {
		t.Error("nothing may reach the sink from an invalid form")
	}

	w.SetLabel("KNOWS")
	w.AddProperty("since", "2020")
	text, err := w.Confirm()
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if buf.text != text || text == "" {
		t.Errorf("sink got %q, confirm returned %q", buf.text, text)
	}
	if w.Open() {
		t.Error("workflow should close on confirm")
	}
	if drafts.cleared != 1 {
		t.Errorf("confirm should clear the draft once, got %d", drafts.cleared)
	}
}

func TestWorkflowCancel(t *testing.T) {
	buf := &commandBuffer{text: "MATCH (n) RETURN n"}
	drafts := &draftCounter{}
	w := NewWorkflow(buf, drafts)

	w.OpenEdge("1", "2")
	w.SetLabel("KNOWS")
	w.AddProperty("k", "v")
	w.Cancel()

	if w.Open() || w.Edge.Label != "" || len(w.Edge.Properties) != 0 {
		t.Errorf("cancel should discard the form, got %+v", w.Edge)
	}
	if drafts.cleared != 1 {
		t.Errorf("cancel should clear the draft, got %d", drafts.cleared)
	}
	if buf.text != "MATCH (n) RETURN n" {
		t.Error("cancel must not touch the sink")
	}
}

func TestWorkflowNode(t *testing.T) {
	buf := &commandBuffer{}
	drafts := &draftCounter{}
	w := NewWorkflow(buf, drafts)

	w.OpenNode()
	w.SetLabel("Person")
	w.AddProperty("name", "Ann")
	w.AddProperty("age", "30")
	w.RemoveProperty(1)
	w.RemoveProperty(7)

	if _, err := w.Confirm(); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if buf.text != "CREATE (n:Person {name: 'Ann'}) RETURN n" {
		t.Errorf("unexpected statement %q", buf.text)
	}
	if drafts.cleared != 0 {
		t.Error("node forms have no draft to clear")
	}
	if _, err := w.Confirm(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestCompileEdgeMatching(t *testing.T) {
	byElementID := func(alias, id string) string { return "elementId(" + alias + ")='" + id + "'" }
	got, err := CompileEdgeMatching(EdgeForm{Label: "KNOWS", OriginID: "4:abc:12", TargetID: "4:abc:13"}, byElementID)
	if err != nil {
		t.Fatalf("CompileEdgeMatching failed: %v", err)
	}
	want := "MATCH (a),(b) WHERE elementId(a)='4:abc:12' AND elementId(b)='4:abc:13' CREATE (a)-[r:KNOWS]->(b) RETURN a,r,b"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}

	got, _ = CompileEdgeMatching(EdgeForm{Label: "KNOWS", OriginID: "1", TargetID: "2"}, nil)
	if got != "MATCH (a),(b) WHERE id(a)=1 AND id(b)=2 CREATE (a)-[r:KNOWS]->(b) RETURN a,r,b" {
		t.Errorf("nil matcher should use id(), got %q", got)
	}
}

func TestWorkflowUsesMatcher(t *testing.T) {
	buf := &commandBuffer{}
	w := NewWorkflow(buf, nil)
	w.Match = func(alias, id string) string { return "elementId(" + alias + ")='" + id + "'" }

	w.OpenEdge("4:abc:12", "4:abc:13")
	w.SetLabel("KNOWS")
	if _, err := w.Confirm(); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	want := "MATCH (a),(b) WHERE elementId(a)='4:abc:12' AND elementId(b)='4:abc:13' CREATE (a)-[r:KNOWS]->(b) RETURN a,r,b"
	if buf.text != want {
		t.Errorf("got  %q\nwant %q", buf.text, want)
	}
}

func TestOpenNodeClearsEdgeDraft(t *testing.T) {
	drafts := &draftCounter{}
	w := NewWorkflow(&commandBuffer{}, drafts)

	w.OpenNode()
	if drafts.cleared != 0 {
		t.Error("opening a node form from closed must not touch drafts")
	}

	w.OpenEdge("1", "2")
	w.OpenNode()
	if drafts.cleared != 1 {
		t.Errorf("switching from an edge form should clear the draft once, got %d", drafts.cleared)
	}
	if w.Mode() != ModeNode || w.Edge.OriginID != "" {
		t.Errorf("expected a fresh node form, got mode %s edge %+v", w.Mode(), w.Edge)
	}
}

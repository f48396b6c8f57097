package creation

import "errors"

// ErrClosed is returned when confirming a workflow that is not open.
var ErrClosed = errors.New("creation: no form open")

// CommandSink receives compiled statements. It is the editor's current
// command text.
type CommandSink interface {
	SetCommand(text string)
}

// DraftClearer removes the provisional edge left by an edge-draw gesture.
type DraftClearer interface {
	ClearDraft()
}

// Mode is the form currently open.
type Mode int

const (
	ModeClosed Mode = iota
	ModeNode
	ModeEdge
)

func (m Mode) String() string {
	switch m {
	case ModeNode:
		return "node"
	case ModeEdge:
		return "edge"
	default:
		return "closed"
	}
}

// Workflow drives the new-node and new-edge forms. Confirm writes the
// compiled statement to the sink; it never submits it.
type Workflow struct {
	sink   CommandSink
	drafts DraftClearer
	mode   Mode

	// Match selects edge endpoints. Nil means id().
	Match NodeMatcher

	Node   NodeForm
	Edge   EdgeForm
	Errors FieldErrors
}

// NewWorkflow creates a closed workflow. drafts may be nil.
func NewWorkflow(sink CommandSink, drafts DraftClearer) *Workflow {
	return &Workflow{sink: sink, drafts: drafts}
}

// Mode returns the open form.
func (w *Workflow) Mode() Mode { return w.mode }

// Open reports whether a form is open.
func (w *Workflow) Open() bool { return w.mode != ModeClosed }

// OpenNode opens an empty node form. An open edge form is closed first,
// taking its provisional edge with it.
func (w *Workflow) OpenNode() {
	if w.mode == ModeEdge {
		w.close()
	}
	w.reset()
	w.mode = ModeNode
}

// OpenEdge opens the edge form with the endpoints filled in.
func (w *Workflow) OpenEdge(originID, targetID string) {
	w.reset()
	w.mode = ModeEdge
	w.Edge.OriginID = originID
	w.Edge.TargetID = targetID
}

// SetLabel sets the label of the open form.
func (w *Workflow) SetLabel(label string) {
	if w.mode == ModeEdge {
		w.Edge.Label = label
	} else {
		w.Node.Label = label
	}
}

// SetEndpoints replaces the edge endpoints.
func (w *Workflow) SetEndpoints(originID, targetID string) {
	w.Edge.OriginID = originID
	w.Edge.TargetID = targetID
}

// AddProperty appends a key/value pair to the open form.
func (w *Workflow) AddProperty(key, value string) {
	p := Property{Key: key, Value: value}
	if w.mode == ModeEdge {
		w.Edge.Properties = append(w.Edge.Properties, p)
	} else {
		w.Node.Properties = append(w.Node.Properties, p)
	}
}

// Properties returns the pairs on the open form.
func (w *Workflow) Properties() []Property {
	if w.mode == ModeEdge {
		return w.Edge.Properties
	}
	return w.Node.Properties
}

// RemoveProperty drops the pair at index i. Out of range is a no-op.
func (w *Workflow) RemoveProperty(i int) {
	props := &w.Node.Properties
	if w.mode == ModeEdge {
		props = &w.Edge.Properties
	}
	if i < 0 || i >= len(*props) {
		return
	}
	*props = append((*props)[:i], (*props)[i+1:]...)
}

// Compile returns the statement for the open form without side effects.
func (w *Workflow) Compile() (string, error) {
	switch w.mode {
	case ModeNode:
		return CompileNode(w.Node)
	case ModeEdge:
		return CompileEdgeMatching(w.Edge, w.Match)
	}
	return "", ErrClosed
}

// Confirm compiles the open form. On success the statement goes to the sink
// and the workflow closes. Validation failures are kept in Errors and the
// form stays open.
func (w *Workflow) Confirm() (string, error) {
	text, err := w.Compile()
	if err != nil {
		var fe FieldErrors
		if errors.As(err, &fe) {
			w.Errors = fe
		}
		return "", err
	}
	w.sink.SetCommand(text)
	w.close()
	return text, nil
}

// Cancel discards the form.
func (w *Workflow) Cancel() {
	w.close()
}

func (w *Workflow) close() {
	if w.mode == ModeEdge && w.drafts != nil {
		w.drafts.ClearDraft()
	}
	w.reset()
	w.mode = ModeClosed
}

func (w *Workflow) reset() {
	w.Node = NodeForm{}
	w.Edge = EdgeForm{}
	w.Errors = nil
}

package viewer

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/msalah0e/agviewer/internal/canvas"
	"github.com/msalah0e/agviewer/internal/transform"
)

// CommandBuffer is the editor text. Shortcuts and confirmed forms write to it;
// Run submits it.
type CommandBuffer struct {
	mu      sync.Mutex
	text    string
	history []string
}

// SetCommand replaces the buffer text.
func (b *CommandBuffer) SetCommand(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
}

// Command returns the buffer text.
func (b *CommandBuffer) Command() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *CommandBuffer) remember(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = append(b.history, text)
}

// History returns the submitted statements, oldest first.
func (b *CommandBuffer) History() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.history...)
}

// Inspector keeps the latest hover or selection summary.
type Inspector struct {
	mu       sync.Mutex
	last     canvas.Summary
	OnChange func(canvas.Summary)
}

// Notify records s.
func (in *Inspector) Notify(s canvas.Summary) {
	in.mu.Lock()
	in.last = s
	fn := in.OnChange
	in.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// Last returns the latest summary.
func (in *Inspector) Last() canvas.Summary {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.last
}

// Alerts collects failures and notices and logs them.
type Alerts struct {
	mu      sync.Mutex
	log     *log.Logger
	errs    []error
	notices []string
}

// Alert records err.
func (a *Alerts) Alert(err error) {
	a.log.Error("alert", "err", err)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errs = append(a.errs, err)
}

// Notice records msg.
func (a *Alerts) Notice(msg string) {
	a.log.Info(msg)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notices = append(a.notices, msg)
}

// Drain returns and clears everything recorded so far.
func (a *Alerts) Drain() (errs []error, notices []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	errs, notices = a.errs, a.notices
	a.errs, a.notices = nil, nil
	return errs, notices
}

// LegendBook merges legends from renders and expansions.
type LegendBook struct {
	mu    sync.Mutex
	nodes map[string]transform.LegendEntry
	edges map[string]transform.LegendEntry
}

// AddLegend merges l. Later entries for a label replace earlier ones.
func (lb *LegendBook) AddLegend(l transform.Legend) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lb.nodes == nil {
		lb.nodes = make(map[string]transform.LegendEntry)
		lb.edges = make(map[string]transform.LegendEntry)
	}
	for k, v := range l.NodeLegend {
		lb.nodes[k] = v
	}
	for k, v := range l.EdgeLegend {
		lb.edges[k] = v
	}
}

// Legend returns a copy of the merged legend.
func (lb *LegendBook) Legend() transform.Legend {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	out := transform.Legend{
		NodeLegend: make(map[string]transform.LegendEntry, len(lb.nodes)),
		EdgeLegend: make(map[string]transform.LegendEntry, len(lb.edges)),
	}
	for k, v := range lb.nodes {
		out.NodeLegend[k] = v
	}
	for k, v := range lb.edges {
		out.EdgeLegend[k] = v
	}
	return out
}

func (lb *LegendBook) reset() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.nodes, lb.edges = nil, nil
}

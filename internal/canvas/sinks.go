package canvas

import (
	"github.com/msalah0e/agviewer/internal/graph"
	"github.com/msalah0e/agviewer/internal/transform"
)

// Summary types.
const (
	SummaryElements   = "elements"
	SummaryBackground = "background"
)

// Summary is a hover or selection event for the inspector.
type Summary struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Element returns the element carried by an elements summary.
func (s Summary) Element() (*graph.Element, bool) {
	el, ok := s.Data.(*graph.Element)
	return el, ok
}

// Stats returns the counts carried by a background summary.
func (s Summary) Stats() (graph.Stats, bool) {
	st, ok := s.Data.(graph.Stats)
	return st, ok
}

// Notifier receives hover and selection summaries.
type Notifier interface {
	Notify(Summary)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Summary)

// Notify calls f.
func (f NotifierFunc) Notify(s Summary) { f(s) }

// LegendSink receives legend data after renders and expansions.
type LegendSink interface {
	AddLegend(transform.Legend)
}

// AlertSink surfaces failures and informational notices to the user.
type AlertSink interface {
	Alert(err error)
	Notice(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Summary) {}

type nopLegend struct{}

func (nopLegend) AddLegend(transform.Legend) {}

type nopAlerts struct{}

func (nopAlerts) Alert(error)   {}
func (nopAlerts) Notice(string) {}

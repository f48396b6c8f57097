// Package cypher submits query text to a graph database and returns rows in
// the shape the transformer reads.
package cypher

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrStatus is returned when the server answers with a non-success status.
var ErrStatus = errors.New("cypher: server error")

// Result is a buffered query result. Each row maps column name to value;
// vertices and edges are maps with id, label and properties keys, edges add
// start and end.
type Result struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Submitter runs query text against a backend.
type Submitter interface {
	Submit(ctx context.Context, cmd string) (*Result, error)
}

// Closer is implemented by submitters holding connections.
type Closer interface {
	Close(ctx context.Context) error
}

// Expander is implemented by submitters whose backend addresses elements
// differently from the default id() function.
type Expander interface {
	ExpandQuery(id string) string
}

// Matcher is implemented by submitters whose backend addresses nodes
// differently from the default id() function. MatchNode returns the
// predicate selecting the node bound to alias.
type Matcher interface {
	MatchNode(alias, id string) string
}

// MatchNode is the default predicate, id(alias)=<id>.
func MatchNode(alias, id string) string {
	return fmt.Sprintf("id(%s)=%s", alias, id)
}

// MatchNodeFor picks the node predicate for s.
func MatchNodeFor(s Submitter) func(alias, id string) string {
	if m, ok := s.(Matcher); ok {
		return m.MatchNode
	}
	return MatchNode
}

// ExpandQuery returns the query fetching every relation of the node with
// the given id together with both endpoints.
func ExpandQuery(id string) string {
	return fmt.Sprintf("MATCH (S)-[R]-(T) WHERE id(S) = '%s' RETURN S, R, T", quote(id))
}

// ExpandQueryFor picks the expansion query for s.
func ExpandQueryFor(s Submitter, id string) string {
	if e, ok := s.(Expander); ok {
		return e.ExpandQuery(id)
	}
	return ExpandQuery(id)
}

func quote(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// Package shortcut builds the canned queries behind the label and property
// lists, for each supported database flavor.
package shortcut

import "fmt"

// Database flavors.
const (
	FlavorAGE   = "AGE"
	FlavorAGENS = "AGENS"
)

// Element kinds accepted by LabelQuery.
const (
	KindNode = "node"
	KindEdge = "edge"
)

// Property key types accepted by PropertyQuery.
const (
	KeyVertex = "v"
	KeyEdge   = "e"
)

// AllLabels selects every label.
const AllLabels = "*"

// Database names the target graph and its flavor.
type Database struct {
	Flavor string
	Graph  string
}

// LabelQuery returns the query listing elements of kind with the given
// label. An unknown flavor or kind yields "".
func LabelQuery(kind, label string, db Database) string {
	switch db.Flavor {
	case FlavorAGE:
		return ageLabelQuery(kind, label, db.Graph)
	case FlavorAGENS:
		return agensLabelQuery(kind, label)
	}
	return ""
}

func ageLabelQuery(kind, label, graph string) string {
	switch kind {
	case KindNode:
		match := "MATCH (V)"
		if label != AllLabels {
			match = fmt.Sprintf("MATCH (V:%s)", label)
		}
		return fmt.Sprintf("SELECT * from cypher('%s', $$\n  %s\n  RETURN V\n$$) as (V agtype);", graph, match)
	case KindEdge:
		match := "MATCH (V)-[R]-(V2)"
		if label != AllLabels {
			match = fmt.Sprintf("MATCH (V)-[R:%s]-(V2)", label)
		}
		return fmt.Sprintf("SELECT * from cypher('%s', $$\n  %s\n  RETURN V,R,V2\n$$) as (V agtype, R agtype, V2 agtype);", graph, match)
	}
	return ""
}

func agensLabelQuery(kind, label string) string {
	switch kind {
	case KindNode:
		if label == AllLabels {
			return "MATCH (V) RETURN V"
		}
		return fmt.Sprintf("MATCH (V) WHERE LABEL(V) = '%s' RETURN V", label)
	case KindEdge:
		if label == AllLabels {
			return "MATCH (V)-[R]->(V2) RETURN *"
		}
		return fmt.Sprintf("MATCH (V)-[R]->(V2) WHERE LABEL(R) = '%s' RETURN *", label)
	}
	return ""
}

// PropertyQuery returns the query listing elements that carry the named
// property. keyType is "v" for vertices or "e" for edges; anything else
// yields "".
func PropertyQuery(keyType, name string) string {
	switch keyType {
	case KeyVertex:
		return fmt.Sprintf("MATCH (V) WHERE V.'%s' IS NOT NULL RETURN V", name)
	case KeyEdge:
		return fmt.Sprintf("MATCH (V)-[R]->(V2) WHERE R.'%s' IS NOT NULL RETURN *", name)
	}
	return ""
}

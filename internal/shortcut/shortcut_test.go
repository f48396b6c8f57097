package shortcut

import (
	"strings"
	"testing"
)

func TestAGENSLabelQuery(t *testing.T) {
	db := Database{Flavor: FlavorAGENS}
	tests := []struct {
		kind, label, want string
	}{
		{KindNode, "*", "MATCH (V) RETURN V"},
		{KindNode, "Person", "MATCH (V) WHERE LABEL(V) = 'Person' RETURN V"},
		{KindEdge, "*", "MATCH (V)-[R]->(V2) RETURN *"},
		{KindEdge, "KNOWS", "MATCH (V)-[R]->(V2) WHERE LABEL(R) = 'KNOWS' RETURN *"},
		{"bogus", "x", ""},
	}
	for _, tt := range tests {
		if got := LabelQuery(tt.kind, tt.label, db); got != tt.want {
			t.Errorf("LabelQuery(%q, %q) = %q, want %q", tt.kind, tt.label, got, tt.want)
		}
	}
}

func TestAGELabelQuery(t *testing.T) {
	db := Database{Flavor: FlavorAGE, Graph: "demo"}

	q := LabelQuery(KindNode, "Person", db)
	if !strings.HasPrefix(q, "SELECT * from cypher('demo', $$") {
		t.Errorf("unexpected prefix: %q", q)
	}
	if !strings.Contains(q, "MATCH (V:Person)") || !strings.HasSuffix(q, "$$) as (V agtype);") {
		t.Errorf("unexpected node query: %q", q)
	}

	q = LabelQuery(KindEdge, "*", db)
	if !strings.Contains(q, "MATCH (V)-[R]-(V2)") || !strings.Contains(q, "RETURN V,R,V2") {
		t.Errorf("unexpected edge query: %q", q)
	}
	if !strings.HasSuffix(q, "as (V agtype, R agtype, V2 agtype);") {
		t.Errorf("unexpected edge query suffix: %q", q)
	}
}

func TestUnknownFlavor(t *testing.T) {
	if got := LabelQuery(KindNode, "*", Database{Flavor: "NEO"}); got != "" {
		t.Errorf("expected empty query, got %q", got)
	}
}

func TestPropertyQuery(t *testing.T) {
	if got := PropertyQuery(KeyVertex, "name"); got != "MATCH (V) WHERE V.'name' IS NOT NULL RETURN V" {
		t.Errorf("unexpected vertex query %q", got)
	}
	if got := PropertyQuery(KeyEdge, "since"); got != "MATCH (V)-[R]->(V2) WHERE R.'since' IS NOT NULL RETURN *" {
		t.Errorf("unexpected edge query %q", got)
	}
	if got := PropertyQuery("x", "name"); got != "" {
		t.Errorf("expected empty query, got %q", got)
	}
}

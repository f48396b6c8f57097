package cypher

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// BoltClient runs queries over the Bolt protocol.
type BoltClient struct {
	Driver neo4j.DriverWithContext
	DBName string
}

// NewBoltClient creates a driver for uri with basic auth.
func NewBoltClient(uri, user, password, dbName string) (*BoltClient, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create bolt driver: %w", err)
	}
	return &BoltClient{Driver: driver, DBName: dbName}, nil
}

// Verify checks connectivity.
func (b *BoltClient) Verify(ctx context.Context) error {
	return b.Driver.VerifyConnectivity(ctx)
}

// Close releases the driver.
func (b *BoltClient) Close(ctx context.Context) error {
	return b.Driver.Close(ctx)
}

// ExpandQuery addresses nodes by element id.
func (b *BoltClient) ExpandQuery(id string) string {
	return fmt.Sprintf("MATCH (S)-[R]-(T) WHERE elementId(S) = '%s' RETURN S, R, T", quote(id))
}

// MatchNode addresses nodes by quoted element id.
func (b *BoltClient) MatchNode(alias, id string) string {
	return fmt.Sprintf("elementId(%s)='%s'", alias, quote(id))
}

// Submit executes cmd and converts the buffered records.
func (b *BoltClient) Submit(ctx context.Context, cmd string) (*Result, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{}
	if b.DBName != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(b.DBName))
	}
	eager, err := neo4j.ExecuteQuery(ctx, b.Driver, cmd, nil, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return nil, fmt.Errorf("execute bolt query: %w", err)
	}
	return FromRecords(eager.Keys, eager.Records), nil
}

// FromRecords converts driver records into rows.
func FromRecords(keys []string, records []*neo4j.Record) *Result {
	res := &Result{Columns: keys, Rows: make([]map[string]any, 0, len(records))}
	for _, rec := range records {
		row := make(map[string]any, len(rec.Keys))
		for i, k := range rec.Keys {
			row[k] = convert(rec.Values[i])
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

func convert(v any) any {
	switch val := v.(type) {
	case neo4j.Node:
		label := ""
		if len(val.Labels) > 0 {
			label = val.Labels[0]
		}
		return map[string]any{
			"id":         val.ElementId,
			"label":      label,
			"properties": val.Props,
		}
	case neo4j.Relationship:
		return map[string]any{
			"id":         val.ElementId,
			"label":      val.Type,
			"start":      val.StartElementId,
			"end":        val.EndElementId,
			"properties": val.Props,
		}
	case neo4j.Path:
		out := make([]any, 0, len(val.Nodes)+len(val.Relationships))
		for _, n := range val.Nodes {
			out = append(out, convert(n))
		}
		for _, r := range val.Relationships {
			out = append(out, convert(r))
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = convert(item)
		}
		return out
	default:
		return v
	}
}

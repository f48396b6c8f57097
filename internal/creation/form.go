// Package creation collects node and edge forms and compiles them into
// CREATE statements for the command editor.
package creation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// ErrInvalidForm is matched by every FieldErrors value.
var ErrInvalidForm = errors.New("creation: invalid form")

// Property is one key/value pair entered on a form.
type Property struct {
	Key   string `validate:"required"`
	Value string `validate:"required"`
}

// NodeForm holds the fields of the new-node form.
type NodeForm struct {
	Label      string     `validate:"required"`
	Properties []Property `validate:"dive"`
}

// EdgeForm holds the fields of the new-edge form.
type EdgeForm struct {
	Label      string     `validate:"required"`
	OriginID   string     `validate:"required"`
	TargetID   string     `validate:"required"`
	Properties []Property `validate:"dive"`
}

// FieldError is an inline message for one form field.
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors lists every failing field of a form.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, len(fe))
	for i, e := range fe {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Is matches ErrInvalidForm.
func (fe FieldErrors) Is(target error) bool { return target == ErrInvalidForm }

// Message returns the message for field, if any.
func (fe FieldErrors) Message(field string) (string, bool) {
	for _, e := range fe {
		if e.Field == field {
			return e.Message, true
		}
	}
	return "", false
}

var validate = validator.New()

var messages = map[string]string{
	"OriginID": "Missing origin node ID",
	"TargetID": "Missing destination node ID",
	"Key":      "Missing property key",
	"Value":    "Missing property value",
}

// Validate checks the node form.
func (f NodeForm) Validate() error {
	return check(normalizeNode(f), "Missing node label")
}

// Validate checks the edge form.
func (f EdgeForm) Validate() error {
	return check(normalizeEdge(f), "Missing edge label")
}

func check(form any, labelMsg string) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		msg := messages[fe.StructField()]
		if fe.StructField() == "Label" {
			msg = labelMsg
		}
		out = append(out, FieldError{Field: fieldPath(fe.StructNamespace()), Message: msg})
	}
	return out
}

// fieldPath drops the form type from a namespace like
// "EdgeForm.Properties[0].Key".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func normalizeNode(f NodeForm) NodeForm {
	f.Label = strings.TrimSpace(f.Label)
	f.Properties = normalizeProps(f.Properties)
	return f
}

func normalizeEdge(f EdgeForm) EdgeForm {
	f.Label = strings.TrimSpace(f.Label)
	f.OriginID = strings.TrimSpace(f.OriginID)
	f.TargetID = strings.TrimSpace(f.TargetID)
	f.Properties = normalizeProps(f.Properties)
	return f
}

func normalizeProps(props []Property) []Property {
	out := make([]Property, len(props))
	for i, p := range props {
		out[i] = Property{Key: strings.TrimSpace(p.Key), Value: p.Value}
	}
	return out
}

// CompileNode validates f and returns its CREATE statement. The property
// block is left out when there are no properties.
func CompileNode(f NodeForm) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	f = normalizeNode(f)
	return fmt.Sprintf("CREATE (n:%s%s) RETURN n", f.Label, propBlock(f.Properties)), nil
}

// NodeMatcher returns the predicate selecting the node with id bound to
// alias.
type NodeMatcher func(alias, id string) string

func matchByID(alias, id string) string {
	return fmt.Sprintf("id(%s)=%s", alias, id)
}

// CompileEdge validates f and returns the statement creating an edge between
// two existing nodes, matched with id().
func CompileEdge(f EdgeForm) (string, error) {
	return CompileEdgeMatching(f, matchByID)
}

// CompileEdgeMatching is CompileEdge with the endpoint predicate supplied by
// match. A nil match selects id().
func CompileEdgeMatching(f EdgeForm, match NodeMatcher) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	if match == nil {
		match = matchByID
	}
	f = normalizeEdge(f)
	return fmt.Sprintf("MATCH (a),(b) WHERE %s AND %s CREATE (a)-[r:%s%s]->(b) RETURN a,r,b",
		match("a", f.OriginID), match("b", f.TargetID), f.Label, propBlock(f.Properties)), nil
}

func propBlock(props []Property) string {
	if len(props) == 0 {
		return ""
	}
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = fmt.Sprintf("%s: '%s'", p.Key, strings.ReplaceAll(p.Value, "'", `\'`))
	}
	return " {" + strings.Join(parts, ", ") + "}"
}

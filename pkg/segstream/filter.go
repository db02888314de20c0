package segstream

import (
	"encoding/json"
	"strings"

	"github.com/google/cel-go/cel"
)

// eventFilter is a compiled CEL predicate over delivered events. The zero
// value matches everything.
//
// Variables: segment, epoch, offset, size (payload bytes), text (payload as
// a string) and json (the payload parsed as JSON, or null).
type eventFilter struct {
	prog cel.Program
	expr string
}

func compileFilter(expr string) (eventFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return eventFilter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("segment", cel.IntType),
		cel.Variable("epoch", cel.IntType),
		cel.Variable("offset", cel.IntType),
		cel.Variable("size", cel.IntType),
		cel.Variable("text", cel.StringType),
		cel.Variable("json", cel.DynType),
	)
	if err != nil {
		return eventFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return eventFilter{}, iss.Err()
	}
	checked, iss := env.Check(ast)
	if iss != nil && iss.Err() != nil {
		return eventFilter{}, iss.Err()
	}
	if !checked.OutputType().IsExactType(cel.BoolType) {
		return eventFilter{}, &celTypeError{got: checked.OutputType().String()}
	}
	prog, err := env.Program(checked)
	if err != nil {
		return eventFilter{}, err
	}
	return eventFilter{prog: prog, expr: expr}, nil
}

type celTypeError struct{ got string }

func (e *celTypeError) Error() string { return "filter must evaluate to bool, got " + e.got }

// match reports whether ev passes. Evaluation errors, such as a missing
// JSON field, count as no match.
func (f eventFilter) match(ev Event) bool {
	if f.prog == nil {
		return true
	}
	var doc any
	if json.Valid(ev.Payload) {
		_ = json.Unmarshal(ev.Payload, &doc)
	}
	out, _, err := f.prog.Eval(map[string]any{
		"segment": int64(ev.Segment),
		"epoch":   ev.Segment.Epoch(),
		"offset":  ev.Offset,
		"size":    int64(len(ev.Payload)),
		"text":    string(ev.Payload),
		"json":    doc,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

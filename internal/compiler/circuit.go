package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pulsenet/internal/ir"
)

// CompileError reports a problem in a CUE circuit description.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileSource compiles a CUE document and returns the declarations of
// its top-level circuit struct. filename is used in error positions.
func CompileSource(filename string, src []byte) ([]ir.Declaration, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	circuitVal := v.LookupPath(cue.ParsePath("circuit"))
	if !circuitVal.Exists() {
		return nil, &CompileError{
			Field:   "circuit",
			Message: "circuit is required",
			Pos:     v.Pos(),
		}
	}
	return CompileCircuit(circuitVal)
}

// CompileCircuit parses a CUE circuit struct into declarations, in field
// order. Each field is one module:
//
//	name: {kind: "flipflop", outputs: ["x", "y"]}
func CompileCircuit(v cue.Value) ([]ir.Declaration, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var decls []ir.Declaration
	for iter.Next() {
		d, err := compileModule(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}

	if len(decls) == 0 {
		return nil, &CompileError{
			Field:   "circuit",
			Message: "at least one module is required",
			Pos:     v.Pos(),
		}
	}
	return decls, nil
}

func compileModule(name string, v cue.Value) (ir.Declaration, error) {
	field := "circuit." + name
	d := ir.Declaration{Name: ir.ModuleID(name), Line: v.Pos().Line()}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return d, &CompileError{Field: field + ".kind", Message: "kind is required", Pos: v.Pos()}
	}
	kindStr, err := kindVal.String()
	if err != nil {
		return d, formatCUEError(err)
	}
	d.Kind, err = ir.ParseKind(kindStr)
	if err != nil {
		return d, &CompileError{Field: field + ".kind", Message: err.Error(), Pos: kindVal.Pos()}
	}

	outVal := v.LookupPath(cue.ParsePath("outputs"))
	if !outVal.Exists() {
		return d, &CompileError{Field: field + ".outputs", Message: "outputs is required", Pos: v.Pos()}
	}
	list, err := outVal.List()
	if err != nil {
		return d, formatCUEError(err)
	}
	for list.Next() {
		s, err := list.Value().String()
		if err != nil {
			return d, formatCUEError(err)
		}
		if s == "" {
			return d, &CompileError{Field: field + ".outputs", Message: "empty output name", Pos: list.Value().Pos()}
		}
		d.Destinations = append(d.Destinations, ir.ModuleID(s))
	}
	if len(d.Destinations) == 0 {
		return d, &CompileError{Field: field + ".outputs", Message: "at least one output is required", Pos: outVal.Pos()}
	}

	return d, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

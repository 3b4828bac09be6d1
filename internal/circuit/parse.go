package circuit

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/roach88/pulsenet/internal/ir"
)

const arrow = "->"

// Parse reads a text circuit description and returns its declarations in
// source order. Blank lines and lines starting with '#' are skipped.
//
// Parse only checks the syntax of each line. Cross-line rules (duplicate
// names, the broadcaster) are enforced by New.
func Parse(r io.Reader) ([]ir.Declaration, error) {
	var decls []ir.Declaration

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d, err := parseLine(line, n)
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read circuit")
	}

	return decls, nil
}

// ParseString is Parse over a string.
func ParseString(s string) ([]ir.Declaration, error) {
	return Parse(strings.NewReader(s))
}

// parseLine parses "<name> -> <d1>, <d2>, ...".
func parseLine(line string, n int) (ir.Declaration, error) {
	lhs, rhs, ok := strings.Cut(line, arrow)
	if !ok {
		return ir.Declaration{}, &ParseError{Line: n, Text: line, Msg: "missing " + arrow}
	}
	lhs = strings.TrimSpace(lhs)

	d := ir.Declaration{Line: n}
	switch {
	case lhs == string(ir.BroadcasterID):
		d.Kind = ir.KindBroadcaster
		d.Name = ir.BroadcasterID
	case strings.HasPrefix(lhs, "%"):
		d.Kind = ir.KindFlipFlop
		d.Name = ir.ModuleID(strings.TrimSpace(lhs[1:]))
	case strings.HasPrefix(lhs, "&"):
		d.Kind = ir.KindConjunction
		d.Name = ir.ModuleID(strings.TrimSpace(lhs[1:]))
	case lhs == "":
		return ir.Declaration{}, &ParseError{Line: n, Text: line, Msg: "missing module name"}
	default:
		return ir.Declaration{}, &ParseError{Line: n, Text: line, Msg: "unknown kind prefix"}
	}
	if d.Name == "" {
		return ir.Declaration{}, &ParseError{Line: n, Text: line, Msg: "missing module name"}
	}
	if strings.ContainsAny(string(d.Name), " \t,") {
		return ir.Declaration{}, &ParseError{Line: n, Text: line, Msg: "invalid module name"}
	}

	for _, field := range strings.Split(rhs, ",") {
		dst := strings.TrimSpace(field)
		if dst == "" {
			return ir.Declaration{}, &ParseError{Line: n, Text: line, Msg: "empty destination"}
		}
		d.Destinations = append(d.Destinations, ir.ModuleID(dst))
	}

	return d, nil
}

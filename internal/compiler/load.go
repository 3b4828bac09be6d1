package compiler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/pulsenet/internal/circuit"
	"github.com/roach88/pulsenet/internal/ir"
)

// LoadFile reads a circuit description from path. Files ending in .cue
// are compiled as CUE; anything else is parsed as the line format.
func LoadFile(path string) ([]ir.Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read circuit file: %w", err)
	}

	if filepath.Ext(path) == ".cue" {
		return CompileSource(path, data)
	}

	decls, err := circuit.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return decls, nil
}

// LoadCircuit reads and builds the circuit at path.
func LoadCircuit(path string) (*circuit.Circuit, error) {
	decls, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := circuit.New(decls)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// SourceText renders declarations in the line format, one per line, in
// declaration order. Parsing the result yields the same declarations
// (without line numbers).
func SourceText(decls []ir.Declaration) string {
	var buf bytes.Buffer
	for i, d := range decls {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(d.String())
	}
	return buf.String()
}

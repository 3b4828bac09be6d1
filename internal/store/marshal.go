package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/pulsenet/internal/ir"
)

// MarshalSummary renders a result summary as canonical JSON for the
// runs.result column. Values must be types ir.MarshalCanonical accepts.
// Equal summaries always produce identical text, which is what replay
// compares.
func MarshalSummary(summary map[string]any) (string, error) {
	data, err := ir.MarshalCanonical(summary)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	return string(data), nil
}

// UnmarshalSummary parses a stored summary. Numbers are kept as
// json.Number so periods above 2^53 survive.
func UnmarshalSummary(data string) (map[string]any, error) {
	if data == "" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	return m, nil
}

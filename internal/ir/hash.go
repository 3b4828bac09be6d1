package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainCircuit = "pulsenet/circuit/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CircuitHash computes the content-addressed identity of a circuit
// description.
//
// Declaration order does not contribute: two files listing the same modules
// in a different order hash identically. Destination order does contribute,
// since it fixes the order in which a module's outputs are enqueued.
func CircuitHash(decls []Declaration) (string, error) {
	modules := make(map[string]any, len(decls))
	for _, d := range decls {
		if _, dup := modules[string(d.Name)]; dup {
			return "", fmt.Errorf("CircuitHash: duplicate module %q", d.Name)
		}
		outputs := make([]any, len(d.Destinations))
		for i, dst := range d.Destinations {
			outputs[i] = string(dst)
		}
		modules[string(d.Name)] = map[string]any{
			"kind":    d.Kind.String(),
			"outputs": outputs,
		}
	}

	canonical, err := MarshalCanonical(map[string]any{"modules": modules})
	if err != nil {
		return "", fmt.Errorf("CircuitHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCircuit, canonical), nil
}

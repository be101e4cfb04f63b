package ingest

import (
	"fmt"

	"leakloader/pkg/oldb"
)

// Policy selects how a table's load responds to a failed batch.
type Policy string

const (
	// PolicySkip rolls the failed batch back, logs its row span, counts
	// the gap, and continues with the next batch. This is the default for
	// every table: an aborted table would be indistinguishable from a
	// complete one to the row-count checkpoint on the next run, so a loud
	// gap is safer than a silent half-table.
	PolicySkip Policy = "skip"
	// PolicyAbort stops the table's load at the first failed batch,
	// keeping prior committed batches in place.
	PolicyAbort Policy = "abort"
)

// ParsePolicy converts a configuration string into a Policy. The empty
// string selects the skip default.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicySkip:
		return PolicySkip, nil
	case PolicyAbort:
		return PolicyAbort, nil
	}
	return "", fmt.Errorf("unknown batch policy %q (want %q or %q)", s, PolicySkip, PolicyAbort)
}

// ResolvePolicies expands a uniform default plus per-table overrides into
// the effective policy for every destination table. Override keys must name
// destination tables.
func ResolvePolicies(def string, overrides map[string]string) (map[string]Policy, error) {
	fallback, err := ParsePolicy(def)
	if err != nil {
		return nil, err
	}
	policies := make(map[string]Policy, len(oldb.Tables))
	for _, table := range oldb.Tables {
		policies[table.Name] = fallback
	}
	for name, raw := range overrides {
		if _, known := policies[name]; !known {
			return nil, fmt.Errorf("policy override for unknown table %q", name)
		}
		p, err := ParsePolicy(raw)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		policies[name] = p
	}
	return policies, nil
}

package skilltree

import (
	"fmt"
	"strings"
)

// Policy selects how completion flows through the tree when a node is toggled.
type Policy int

const (
	// PolicyCascade lets any node be toggled. The new value is pushed down to
	// every descendant, then ancestors are recomputed.
	PolicyCascade Policy = iota

	// PolicyLeafOnly only allows leaves to be toggled. Ancestors are
	// recomputed after the change.
	PolicyLeafOnly
)

// DefaultPolicy is used when configuration does not name one.
const DefaultPolicy = PolicyCascade

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyCascade:
		return "cascade"
	case PolicyLeafOnly:
		return "leaf-only"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Description returns a one-line help text for the policy.
func (p Policy) Description() string {
	switch p {
	case PolicyCascade:
		return "any skill can be toggled; the change cascades to all sub-skills"
	case PolicyLeafOnly:
		return "only skills without sub-skills can be toggled"
	default:
		return ""
	}
}

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cascade", "bidirectional", "b":
		return PolicyCascade, nil
	case "leaf-only", "leaf", "leafonly", "a":
		return PolicyLeafOnly, nil
	default:
		return 0, fmt.Errorf("unknown completion policy %q (want cascade or leaf-only)", s)
	}
}

// AllPolicies returns the supported policies in display order.
func AllPolicies() []Policy {
	return []Policy{PolicyCascade, PolicyLeafOnly}
}

package linker

import (
	"strings"

	"github.com/agentstation/eventlink/pkg/constants"
	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/normalize"
)

// DuplicatePolicy decides what happens when a lookup table holds several
// rows for the same key.
type DuplicatePolicy string

const (
	// PolicyCrossProduct emits one output row per equal-keyed lookup row.
	PolicyCrossProduct DuplicatePolicy = "cross-product"
	// PolicyFirstMatch keeps only the first equal-keyed row in table order.
	PolicyFirstMatch DuplicatePolicy = "first-match"
)

// ParseDuplicatePolicy parses a policy name. The empty string is the default.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyCrossProduct:
		return PolicyCrossProduct, nil
	case PolicyFirstMatch:
		return PolicyFirstMatch, nil
	}
	return "", errors.NewValidationError("duplicate_policy", s, "must be cross-product or first-match")
}

// Options configures the linker.
type Options struct {
	// JoinKey is the lookup column compared with the outreach subject name.
	JoinKey string
	// Trim removes surrounding whitespace from both sides of the comparison.
	Trim bool
	// Fold compares keys case-insensitively.
	Fold bool
	// Policy resolves multiple rows with the same key.
	Policy DuplicatePolicy
	// Required names tables a row must match to be kept.
	Required []string
}

// DefaultOptions returns exact matching on memberName with the cross-product policy.
func DefaultOptions() Options {
	return Options{
		JoinKey: constants.DefaultJoinKey,
		Policy:  PolicyCrossProduct,
	}
}

func (o Options) joinKey() string {
	if o.JoinKey == "" {
		return constants.DefaultJoinKey
	}
	return o.JoinKey
}

func (o Options) policy() DuplicatePolicy {
	if o.Policy == "" {
		return PolicyCrossProduct
	}
	return o.Policy
}

// key normalizes a value for comparison. Blank keys never match.
func (o Options) key(v string) (string, bool) {
	if o.Trim {
		v = strings.TrimSpace(v)
	}
	if o.Fold {
		v = normalize.Fold(v)
	}
	return v, strings.TrimSpace(v) != ""
}

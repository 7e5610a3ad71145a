package imagetrust

import (
	"context"
	"fmt"

	"trustgate/internal/phash"
)

// HashIndex returns stored perceptual hashes sharing a prefix. The prefix
// filter keeps the lookup on an index instead of a table scan.
type HashIndex interface {
	FindHashesByPrefix(ctx context.Context, prefix string) ([]string, error)
}

type ReuseDetector struct {
	policy Policy
	index  HashIndex
}

func NewReuseDetector(policy Policy, index HashIndex) *ReuseDetector {
	return &ReuseDetector{policy: policy, index: index}
}

// Check applies the flat reuse penalty once any stored candidate lies within
// the reuse distance; scanning stops at the first hit.
func (d *ReuseDetector) Check(ctx context.Context, hash string) (Finding, error) {
	var f Finding

	prefix := hash
	if len(prefix) > d.policy.HashPrefixLen {
		prefix = prefix[:d.policy.HashPrefixLen]
	}

	candidates, err := d.index.FindHashesByPrefix(ctx, prefix)
	if err != nil {
		return f, fmt.Errorf("find hashes by prefix: %w", err)
	}

	for _, candidate := range candidates {
		near, err := d.Near(hash, candidate)
		if err != nil {
			return f, err
		}
		if near {
			f.Penalty = d.policy.ReusePenalty
			f.Reasons = append(f.Reasons, ReasonReused)
			break
		}
	}
	return f, nil
}

func (d *ReuseDetector) Near(a, b string) (bool, error) {
	dist, err := phash.Distance(a, b)
	if err != nil {
		return false, err
	}
	return dist < d.policy.ReuseDistance, nil
}

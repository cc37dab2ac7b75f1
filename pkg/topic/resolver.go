// Package topic derives stable hierarchical channel identifiers from a
// node's position in the declarative tree.
package topic

import (
	"strings"

	"github.com/apkaudio/openair/pkg/domain"
)

// Separator joins path fragments into a full topic path.
const Separator = "/"

// Join concatenates non-empty parts with the separator.
func Join(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, Separator)
}

// Resolver tracks resolved fragments per parent so that sibling collisions
// surface as configuration errors instead of silent topic collisions.
type Resolver struct {
	siblings map[string]map[string]bool
}

// NewResolver creates an empty resolver for one tree walk.
func NewResolver() *Resolver {
	return &Resolver{siblings: make(map[string]map[string]bool)}
}

// Resolve concatenates the parent path and the node's own fragment.
// An empty fragment is a hard ConfigError; the engine never infers a
// synthetic path. A fragment already resolved among the same parent's
// siblings is likewise a ConfigError.
func (r *Resolver) Resolve(parentPath, fragment string) (string, error) {
	frag := strings.Trim(fragment, Separator)
	if frag == "" {
		return "", domain.NewConfigError(parentPath, "missing path fragment")
	}
	seen := r.siblings[parentPath]
	if seen == nil {
		seen = make(map[string]bool)
		r.siblings[parentPath] = seen
	}
	if seen[frag] {
		return "", domain.NewConfigError(Join(parentPath, frag), "duplicate path fragment among siblings")
	}
	seen[frag] = true
	return Join(parentPath, frag), nil
}

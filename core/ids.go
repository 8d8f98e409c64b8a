package core

import (
	"crypto/rand"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const idLength = 8

// IdRegistry detects id collisions and generates fresh 8-character ASCII
// ids during a single Sanitize run. It is owned by the caller and
// discarded afterward — never a package-level singleton — so two Configs
// sanitized concurrently never interfere. No id library is pulled in,
// just crypto/rand.
type IdRegistry struct {
	seen map[string]struct{}
}

// NewIdRegistry creates an empty registry.
func NewIdRegistry() *IdRegistry {
	return &IdRegistry{seen: make(map[string]struct{})}
}

// Reserve records an existing id, returning false if it was already seen
// (a collision with an id claimed earlier in the same run).
func (r *IdRegistry) Reserve(id string) bool {
	if _, exists := r.seen[id]; exists {
		return false
	}
	r.seen[id] = struct{}{}
	return true
}

// Generate produces a fresh, unique 8-character ascii id and reserves it.
func (r *IdRegistry) Generate() string {
	for {
		id := randomID()
		if r.Reserve(id) {
			return id
		}
	}
}

// EnsureID returns id unchanged if non-empty and not already reserved by
// someone else; otherwise it generates and reserves a fresh one, so an id
// is generated on first need and stable thereafter. collided reports
// whether the supplied id had to be replaced because another entity
// already claimed it.
func (r *IdRegistry) EnsureID(id string) (result string, collided bool) {
	if id != "" {
		if r.Reserve(id) {
			return id, false
		}
		return r.Generate(), true
	}
	return r.Generate(), false
}

func randomID() string {
	buf := make([]byte, idLength)
	_, _ = rand.Read(buf)
	out := make([]byte, idLength)
	for i, b := range buf {
		out[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(out)
}

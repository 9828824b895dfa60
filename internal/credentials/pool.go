// package credentials holds the process-wide pool of provider API keys.
// The pool is built once at startup from configuration and is read-only
// afterwards, so it needs no synchronization.
package credentials

import (
	"fmt"
	"strings"
)

// Credential is a single provider API key. The secret is opaque; logging
// must go through Label so the key value never reaches the logs.
type Credential struct {
	secret string
	label  string
}

func (c Credential) Secret() string { return c.secret }

// Label identifies the credential in logs without exposing it, e.g.
// "key#2 (AIzaSyBQ...)".
func (c Credential) Label() string { return c.label }

// Pool is an ordered, de-duplicated list of usable credentials. Iteration
// order is fixed at construction so retries within one request are
// reproducible.
type Pool struct {
	creds []Credential
}

// NewPool filters raw secrets through the denylist (prefix match on known
// permanently-bad values), drops empties, and de-duplicates by value while
// preserving first-seen order.
func NewPool(secrets []string, denylist []string) *Pool {
	seen := make(map[string]bool, len(secrets))
	var creds []Credential
	for _, raw := range secrets {
		s := strings.TrimSpace(raw)
		if s == "" || seen[s] || denied(s, denylist) {
			continue
		}
		seen[s] = true
		creds = append(creds, Credential{
			secret: s,
			label:  fmt.Sprintf("key#%d (%s...)", len(creds)+1, prefix(s, 8)),
		})
	}
	return &Pool{creds: creds}
}

func denied(secret string, denylist []string) bool {
	for _, bad := range denylist {
		if bad != "" && strings.HasPrefix(secret, bad) {
			return true
		}
	}
	return false
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Credentials returns the pool in iteration order. Callers must treat an
// empty result as a hard failure for provider-dependent work, not a no-op.
func (p *Pool) Credentials() []Credential {
	out := make([]Credential, len(p.creds))
	copy(out, p.creds)
	return out
}

func (p *Pool) Size() int { return len(p.creds) }

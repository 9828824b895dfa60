// package failover runs a provider-dependent operation across the
// credential pool until one credential succeeds or the pool is exhausted.
package failover

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/resolvedesk/resolvedesk/internal/credentials"
	"github.com/resolvedesk/resolvedesk/internal/provider"
)

// ErrNoCredentials means the pool is empty: a hard failure for any
// provider-dependent operation.
var ErrNoCredentials = errors.New("no provider credentials available")

// ExhaustedError is returned after every credential failed retryably.
// It wraps the last observed error.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d credentials exhausted: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// Operation performs one provider call with the given credential.
type Operation func(ctx context.Context, cred credentials.Credential) error

// Executor tries an Operation against each credential in pool order.
// Each Execute call starts the pool fresh; no per-credential health is
// remembered across calls.
type Executor struct {
	pool *credentials.Pool
}

func New(pool *credentials.Pool) *Executor {
	return &Executor{pool: pool}
}

// Execute runs op against each credential in order. The first success
// wins and later credentials are never tried. Retryable provider errors
// (quota, invalid credential, unavailable) move on to the next
// credential; a fatal error — including any non-provider error such as a
// parse failure, which is structural rather than credential-specific —
// stops immediately and propagates.
func (e *Executor) Execute(ctx context.Context, op Operation) error {
	creds := e.pool.Credentials()
	if len(creds) == 0 {
		return ErrNoCredentials
	}

	var lastErr error
	for i, cred := range creds {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx, cred)
		if err == nil {
			if i > 0 {
				log.Printf("[failover] recovered using %s after %d failed attempts", cred.Label(), i)
			}
			return nil
		}
		lastErr = err

		var provErr *provider.Error
		if errors.As(err, &provErr) && provErr.Retryable() {
			log.Printf("[failover] %s on %s, trying next credential: %v", provErr.Class, cred.Label(), err)
			continue
		}

		log.Printf("[failover] non-retryable error on %s: %v", cred.Label(), err)
		return err
	}

	log.Printf("[failover] all %d credentials failed, last error: %v", len(creds), lastErr)
	return &ExhaustedError{Attempts: len(creds), LastErr: lastErr}
}

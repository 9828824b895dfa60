package failover

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvedesk/resolvedesk/internal/credentials"
	"github.com/resolvedesk/resolvedesk/internal/provider"
)

func threeKeyPool() *credentials.Pool {
	return credentials.NewPool([]string{"key-one", "key-two", "key-three"}, nil)
}

func TestExecuteEmptyPool(t *testing.T) {
	exec := New(credentials.NewPool(nil, nil))

	err := exec.Execute(context.Background(), func(ctx context.Context, cred credentials.Credential) error {
		t.Fatal("operation must not run with an empty pool")
		return nil
	})
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestExecuteFirstSuccessWins(t *testing.T) {
	exec := New(threeKeyPool())

	var attempts []string
	err := exec.Execute(context.Background(), func(ctx context.Context, cred credentials.Credential) error {
		attempts = append(attempts, cred.Secret())
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"key-one"}, attempts)
}

func TestExecuteFailsOverOnRetryableErrors(t *testing.T) {
	exec := New(threeKeyPool())

	retryable := []*provider.Error{
		{Class: provider.ClassQuota, Message: "quota exceeded"},
		{Class: provider.ClassInvalidCredential, Message: "key expired"},
	}

	var attempts []string
	err := exec.Execute(context.Background(), func(ctx context.Context, cred credentials.Credential) error {
		attempts = append(attempts, cred.Secret())
		if len(attempts) <= len(retryable) {
			return retryable[len(attempts)-1]
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"key-one", "key-two", "key-three"}, attempts)
}

func TestExecuteFatalStopsImmediately(t *testing.T) {
	exec := New(threeKeyPool())

	var attempts int
	err := exec.Execute(context.Background(), func(ctx context.Context, cred credentials.Credential) error {
		attempts++
		return &provider.Error{Class: provider.ClassFatal, Message: "response not valid JSON"}
	})

	var provErr *provider.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, provider.ClassFatal, provErr.Class)
	assert.Equal(t, 1, attempts, "fatal error must not be retried against other credentials")
}

func TestExecuteNonProviderErrorStopsImmediately(t *testing.T) {
	exec := New(threeKeyPool())

	parseErr := errors.New("no JSON object found in response")
	var attempts int
	err := exec.Execute(context.Background(), func(ctx context.Context, cred credentials.Credential) error {
		attempts++
		return parseErr
	})

	assert.ErrorIs(t, err, parseErr)
	assert.Equal(t, 1, attempts)
}

func TestExecuteExhaustion(t *testing.T) {
	exec := New(threeKeyPool())

	last := &provider.Error{Class: provider.ClassUnavailable, Message: "overloaded"}
	var attempts int
	err := exec.Execute(context.Background(), func(ctx context.Context, cred credentials.Credential) error {
		attempts++
		if attempts < 3 {
			return &provider.Error{Class: provider.ClassQuota, Message: "quota"}
		}
		return last
	})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, error(last))
	assert.Equal(t, 3, attempts)
}

func TestExecuteFreshPoolPerCall(t *testing.T) {
	exec := New(threeKeyPool())

	// First call: key-one fails retryably, key-two succeeds.
	calls := 0
	err := exec.Execute(context.Background(), func(ctx context.Context, cred credentials.Credential) error {
		calls++
		if cred.Secret() == "key-one" {
			return &provider.Error{Class: provider.ClassQuota}
		}
		return nil
	})
	require.NoError(t, err)

	// Second call starts over at key-one; no health memory is kept.
	var first string
	err = exec.Execute(context.Background(), func(ctx context.Context, cred credentials.Credential) error {
		if first == "" {
			first = cred.Secret()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "key-one", first)
}

func TestExecuteCancelledContext(t *testing.T) {
	exec := New(threeKeyPool())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := exec.Execute(ctx, func(ctx context.Context, cred credentials.Credential) error {
		t.Fatal("operation must not run with a cancelled context")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

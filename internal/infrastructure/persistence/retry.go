package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes postgres raises when a transaction lost a lock race
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// DefaultRetryAttempts bounds RetryOnSerializationFailure
const DefaultRetryAttempts = 5

// IsSerializationFailure reports whether err is a postgres serialization
// failure or deadlock that is safe to retry as a whole transaction
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
}

// RetryOnSerializationFailure runs fn and re-runs it with exponential backoff
// while it fails with a serialization failure or deadlock. Any other error
// is returned at once. fn must run a complete transaction.
func RetryOnSerializationFailure(ctx context.Context, attempts uint64, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 20 * time.Millisecond
	policy.MaxInterval = 500 * time.Millisecond

	return backoff.Retry(func() error {
		err := fn()
		if err == nil || IsSerializationFailure(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, attempts), ctx))
}

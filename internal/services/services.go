// Package services implements the catalog's business rules on top of the
// repositories, the cache and the job queue.
package services

import (
	"context"
	"errors"

	"katalog/internal/apperr"
	"katalog/internal/jobs"
	"katalog/internal/repositories"
)

// JobQueue enqueues background jobs.
type JobQueue interface {
	Enqueue(ctx context.Context, job jobs.Job) (string, error)
}

// notFoundOr maps a repository miss to a not-found error with msg and any
// other failure to an internal error.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal(msg, err)
}

// conflictOr maps a uniqueness violation to a conflict with msg and any
// other error to fallback.
func conflictOr(err error, msg string, fallback error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperr.Conflict(msg)
	}
	return fallback
}

// exists reports whether a lookup found a row. Misses are not errors.
func exists(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	return false, err
}

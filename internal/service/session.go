package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/ctu-developers/DSpace/internal/logging"
	"github.com/ctu-developers/DSpace/internal/metrics"
	"github.com/ctu-developers/DSpace/internal/repository"
)

// withSession executes fn in its own session. The session is committed when fn
// succeeds and rolled back otherwise. Errors other than the domain ones are
// logged and reported as ErrStorageFailure.
func withSession(ctx context.Context, store repository.Store, operation, target string, principal *domain.Principal, fn func(sess repository.Session) error) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordOperation(operation, time.Since(start), err)
	}()

	sess, err := store.Begin(ctx, principal)
	if err != nil {
		return storageFailure(ctx, operation, target, err)
	}

	if err = fn(sess); err != nil {
		if rbErr := sess.Rollback(); rbErr != nil {
			logging.Ctx(ctx).Warn().Err(rbErr).Str("operation", operation).Msg("Failed to rollback session")
		}
		if isDomainError(err) {
			logging.Ctx(ctx).Debug().Err(err).
				Str("operation", operation).
				Str("target", target).
				Str("principal", principal.String()).
				Msg("Operation refused")
			return err
		}
		return storageFailure(ctx, operation, target, err)
	}

	if err = sess.Commit(); err != nil {
		return storageFailure(ctx, operation, target, err)
	}
	return nil
}

func storageFailure(ctx context.Context, operation, target string, err error) error {
	logging.Ctx(ctx).Error().Err(err).
		Str("operation", operation).
		Str("target", target).
		Msg("Storage operation failed")
	return fmt.Errorf("%w: %s", domain.ErrStorageFailure, operation)
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrPermissionDenied) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrAlreadyExists)
}

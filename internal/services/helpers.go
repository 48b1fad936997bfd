package services

import (
	apperrors "github.com/dvhs/alumnirank/internal/errors"
)

// storeError classifies a repository failure. AppErrors pass through
// untouched; anything else is treated as a transient store problem the
// caller may retry.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr
	}
	return apperrors.NewTransientError(err)
}

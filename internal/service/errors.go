package service

import (
	"errors"

	"github.com/partnerdesk/platform/internal/domain"
)

// asAppError passes AppErrors raised inside a transaction through unchanged
// and wraps anything else as an internal error.
func asAppError(msg string, err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return domain.ErrInternal(msg, err)
}

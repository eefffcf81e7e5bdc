package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pantrykeeper/internal/common"
	"github.com/dmitrijs2005/pantrykeeper/internal/logging"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/cache"
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorInvalidInput, fmt.Sprintf(format, args...))
}

// storeError keeps domain sentinels as they are and marks anything else as
// a store failure.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorConflict),
		errors.Is(err, common.ErrorInvalidInput),
		errors.Is(err, common.ErrorStoreUnavailable),
		errors.Is(err, common.ErrorInternal),
		errors.Is(err, common.ErrorUnauthorized):
		return err
	default:
		return fmt.Errorf("%s: %w: %w", op, common.ErrorStoreUnavailable, err)
	}
}

// invalidateSuggestions drops the user's cached suggestions. Failures are
// logged only: a stale entry expires with its TTL.
func invalidateSuggestions(ctx context.Context, c cache.SuggestionCache, log logging.Logger, userID string) {
	if err := c.Invalidate(ctx, userID); err != nil {
		log.Warn(ctx, "suggestion cache invalidation failed", "user_id", userID, "error", err)
	}
}

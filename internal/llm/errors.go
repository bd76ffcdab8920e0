package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/spherical/idcard-extractor/internal/domain"
)

// callError classifies a failed model call. A deadline is reported as
// ErrExtractionTimeout so callers can tell a slow model from a broken one.
func callError(ctx context.Context, provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.ExtractionError(domain.ErrExtractionTimeout.Error(),
			fmt.Errorf("%s: %w: %w", provider, domain.ErrExtractionTimeout, err))
	}
	if errors.Is(err, context.Canceled) {
		return domain.ExtractionError("model request cancelled", fmt.Errorf("%s: %w", provider, err))
	}
	return domain.ExtractionError("model request failed", fmt.Errorf("%s: %w", provider, err))
}

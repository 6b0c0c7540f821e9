package revocation

import (
	"fmt"
	"time"

	"shareregistry/pkg/platform/sentinel"
)

// validateTTL rejects revocations that would expire immediately. A token
// whose remaining lifetime is zero is already unusable.
func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}

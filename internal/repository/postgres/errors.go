// internal/repository/postgres/errors.go
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"

	"sika-wallet/internal/util"
)

// mapError translates driver-level failures into the application taxonomy.
// Unique violations surface reference collisions; lock timeouts and
// cancelled queries are retryable because the enclosing transaction rolls
// back without a partial commit.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return util.ErrLockTimeout
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return util.ErrDuplicateReference
		case "55P03", "57014": // lock_not_available, query_canceled
			return util.ErrLockTimeout
		}
		if strings.HasPrefix(string(pqErr.Code), "08") { // connection exceptions
			return util.ErrStoreUnavailable
		}
	}
	return err
}

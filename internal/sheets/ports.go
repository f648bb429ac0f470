// Package sheets defines the outbound ports for the order ledger.
package sheets

import (
	"context"

	"mataam/internal/core"
)

// OrderLedger appends finished orders to an external ledger for the
// owner's bookkeeping.
type OrderLedger interface {
	AppendOrder(ctx context.Context, o core.Order) (rowRef string, err error)
}

package interfaces

import (
	"context"
)

// TxnManager runs fn inside a single transaction. Writes issued through
// repositories with the callback context commit or abort together.
type TxnManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

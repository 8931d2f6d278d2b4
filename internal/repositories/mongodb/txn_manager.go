package mongodb

import (
	"context"

	"seatpool/internal/repositories/interfaces"
	"seatpool/pkg/database"

	"go.mongodb.org/mongo-driver/mongo"
)

type txnManager struct {
	db *database.MongoDB
}

func NewTxnManager(db *database.MongoDB) interfaces.TxnManager {
	return &txnManager{db: db}
}

// WithTransaction runs fn in a MongoDB multi-document transaction. The
// session context passed to fn must be used for every repository call so
// the writes land in the same transaction.
func (t *txnManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := t.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := fn(sessCtx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

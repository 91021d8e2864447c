package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// TxRunner runs a function inside a multi-document transaction.
// Transactions require a replica set or sharded cluster.
type TxRunner struct {
	client *mongo.Client
}

func NewTxRunner(client *mongo.Client) *TxRunner {
	return &TxRunner{client: client}
}

// InTx commits when fn returns nil and aborts otherwise. Writes inside fn
// must use the ctx it receives to join the transaction. The driver retries
// fn on transient transaction errors, so fn must be safe to re-run.
func (t *TxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := t.client.StartSession()
	if err != nil {
		return errors.Join(ErrTransactionFailed, err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	_, err = sess.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, fn(txCtx)
	})
	return err
}

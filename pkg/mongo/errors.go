package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
	ErrTransactionFailed      = errors.New("mongo transaction failed")

	// ErrNotFound is the classified form of mongo.ErrNoDocuments.
	ErrNotFound = errors.New("document not found")
)

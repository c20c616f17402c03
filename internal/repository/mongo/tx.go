package mongo

import (
	"context"

	"alcyxob/fitness-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs units of work in MongoDB session transactions. Transactions
// need a replica set; with enabled=false every call commits on its own and
// Atomic reports false.
type Transactor struct {
	client  *mongo.Client
	enabled bool
}

func NewTransactor(client *mongo.Client, enabled bool) repository.Transactor {
	return &Transactor{client: client, enabled: enabled}
}

// WithinTransaction runs fn inside a session transaction. The driver picks the
// session up from the context handed to fn, so repositories need no extra
// plumbing. Calls made while a session is already attached join it.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (t *Transactor) Atomic() bool {
	return t.enabled
}

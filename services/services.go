package services

import (
	"context"

	"github.com/ishikisiko/match-telemetry/repositories"
)

// TxRunner executes fn in a database transaction. *repositories.Store
// satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

// LivePublisher pushes a typed notification to every connection of a user.
type LivePublisher interface {
	PublishToUser(userID int, msgType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) PublishToUser(int, string, interface{}) {}

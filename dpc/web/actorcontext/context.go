// Package actorcontext carries the request's authenticated actor through the
// request context. It is its own package so both middleware and logging can
// use it without an import cycle.
package actorcontext

import (
	"context"

	"github.com/dpcdirect/dpc-app/dpc/models"
)

type contextKey int

const actorKey contextKey = iota

func NewContext(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func FromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	return actor, ok
}

package cont

import (
	"context"
	"evtickets/entity"
)

type ctxKey string

const CallerKey ctxKey = "caller"

func PutCaller(c context.Context, caller *entity.Identity) context.Context {
	return context.WithValue(c, CallerKey, *caller)
}

// GetCaller returns nil when the request was not authenticated.
func GetCaller(c context.Context) *entity.Identity {
	caller, ok := c.Value(CallerKey).(entity.Identity)
	if !ok || caller.Uid == "" {
		return nil
	}
	return &caller
}

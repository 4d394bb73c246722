package test

import (
	"context"

	"github.com/livecast/ingest/internal/auth"
)

// Authorizer is a test authorizer.
type Authorizer struct {
	Func func(req *auth.Request) error
}

// Authorize implements the authorizer interface.
func (a *Authorizer) Authorize(_ context.Context, req *auth.Request) error {
	return a.Func(req)
}

// NilAuthorizer is an authorizer that accepts everything.
var NilAuthorizer = &Authorizer{
	Func: func(_ *auth.Request) error {
		return nil
	},
}

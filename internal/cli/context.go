// Package cli provides the command-line interface for the datalayer application.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/law-makers/datalayer/internal/app"
)

// ctxKey is used for storing the session in the command context
type ctxKey struct{}

// session carries the Application for one Execute call. It lives in the
// context so Execute can close the app even when a command fails.
type session struct {
	app *app.Application
}

func withSession(ctx context.Context) (context.Context, *session) {
	s := &session{}
	return context.WithValue(ctx, ctxKey{}, s), s
}

func sessionFrom(ctx context.Context) *session {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(ctxKey{}).(*session)
	return s
}

// SetApp stores the Application for the running command.
func SetApp(cmd *cobra.Command, a *app.Application) {
	if s := sessionFrom(cmd.Context()); s != nil {
		s.app = a
	}
}

// GetApp retrieves the Application for the running command, or nil.
func GetApp(cmd *cobra.Command) *app.Application {
	if s := sessionFrom(cmd.Context()); s != nil {
		return s.app
	}
	return nil
}

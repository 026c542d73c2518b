package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benvon/taskify/internal/identity"
	"github.com/benvon/taskify/internal/storage"
	"github.com/benvon/taskify/internal/tasks"
)

// env bundles the stores every command needs, built from the --store flag.
type env struct {
	ids    *identity.Store
	engine *tasks.Engine
}

func newEnv(cmd *cobra.Command) (*env, error) {
	path, err := cmd.Flags().GetString("store")
	if err != nil {
		return nil, err
	}

	store, err := storage.NewFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	ctx := context.Background()
	logger := zap.NewNop()

	ids, err := identity.NewStore(ctx, store, logger)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	engine, err := tasks.NewEngine(ctx, store, logger)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	return &env{ids: ids, engine: engine}, nil
}

// actingUser resolves the signed-in user from the persisted session pointer.
func (e *env) actingUser(ctx context.Context) (uuid.UUID, error) {
	session, err := e.ids.CurrentSession(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return uuid.Nil, fmt.Errorf("not signed in; run 'taskify login' first")
	}
	return session.ID, nil
}

package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/andrzej-wegierski/identiverse-backend/internal/access"
	"github.com/andrzej-wegierski/identiverse-backend/internal/auth"
	"github.com/andrzej-wegierski/identiverse-backend/internal/database"
	"github.com/andrzej-wegierski/identiverse-backend/internal/email"
	"github.com/andrzej-wegierski/identiverse-backend/internal/identity"
	"github.com/andrzej-wegierski/identiverse-backend/internal/migration"
	"github.com/andrzej-wegierski/identiverse-backend/internal/person"
	"github.com/andrzej-wegierski/identiverse-backend/internal/profile"
	"github.com/andrzej-wegierski/identiverse-backend/internal/server"
)

// Module combines all application modules
func Module() fx.Option {
	return fx.Options(
		// Logger
		fx.Provide(newLogger),

		// Configuration
		fx.Provide(server.LoadConfig),

		// Persistence
		database.Module(),
		migration.Module(),

		// Domain modules
		email.NewModule(),
		identity.NewModule(),
		auth.NewModule(),
		access.NewModule(),
		person.NewModule(),
		profile.NewModule(),

		fx.Invoke(registerHooks),
	)
}

func newLogger() (*zap.Logger, error) {
	env := os.Getenv("APP_ENV")
	return server.NewLogger(env)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	authService *auth.Service,
	personService *person.Service,
	profileService *profile.Service,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("identity services ready")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down identity services")
			return nil
		},
	})
}

package profile

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrzej-wegierski/identiverse-backend/internal/access"
)

// NewModule returns the identity-profile module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			// The repository doubles as the ownership resolver the
			// access-control service walks.
			fx.Annotate(
				func(repo Repository) access.ProfileOwnership {
					return repo
				},
			),
			fx.Annotate(
				func(repo Repository, accessSvc *access.Service, log *zap.Logger) *Service {
					return NewService(repo, accessSvc, log)
				},
			),
		),
	)
}

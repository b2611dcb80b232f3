package person

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrzej-wegierski/identiverse-backend/internal/access"
	"github.com/andrzej-wegierski/identiverse-backend/internal/identity"
)

// NewModule returns the person module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			fx.Annotate(
				func(repo Repository, identitySvc *identity.Service, accessSvc *access.Service, log *zap.Logger) *Service {
					return NewService(repo, identitySvc, accessSvc, log)
				},
			),
		),
	)
}

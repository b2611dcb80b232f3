package identity

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrzej-wegierski/identiverse-backend/internal/password"
)

// NewModule returns the identity module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(db *gorm.DB, hasher *password.Hasher) Store {
					return NewStore(db, hasher)
				},
			),
			fx.Annotate(
				func(store Store, log *zap.Logger) *Service {
					return NewService(store, log)
				},
			),
		),
	)
}

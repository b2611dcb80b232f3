package access

import (
	"go.uber.org/fx"

	"github.com/andrzej-wegierski/identiverse-backend/internal/identity"
)

// NewModule returns the access-control module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(identitySvc *identity.Service, profiles ProfileOwnership) *Service {
					return NewService(identitySvc, profiles)
				},
			),
		),
	)
}

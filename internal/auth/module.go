package auth

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/andrzej-wegierski/identiverse-backend/internal/config"
	"github.com/andrzej-wegierski/identiverse-backend/internal/email"
	"github.com/andrzej-wegierski/identiverse-backend/internal/identity"
	"github.com/andrzej-wegierski/identiverse-backend/internal/password"
	"github.com/andrzej-wegierski/identiverse-backend/internal/throttle"
	"github.com/andrzej-wegierski/identiverse-backend/internal/token"
)

// Throttles bundles the two independently configured instances so fx can
// tell them apart.
type Throttles struct {
	fx.Out

	Login *throttle.Throttle `name:"login_throttle"`
	Email *throttle.Throttle `name:"email_throttle"`
}

type serviceDeps struct {
	fx.In

	Config        *config.AppConfig
	Logger        *zap.Logger
	Store         identity.Store
	Hasher        *password.Hasher
	Issuer        *token.Issuer
	LoginThrottle *throttle.Throttle `name:"login_throttle"`
	EmailThrottle *throttle.Throttle `name:"email_throttle"`
	Sender        email.Sender
	Links         *email.Links
}

// NewModule returns the auth module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			// Provide password hasher
			fx.Annotate(
				func(cfg *config.AppConfig) *password.Hasher {
					return password.NewHasher(cfg.Auth.Password)
				},
			),
			// Provide token issuer
			fx.Annotate(
				func(cfg *config.AppConfig, log *zap.Logger) (*token.Issuer, error) {
					return token.NewIssuer(&cfg.Auth.JWT, log)
				},
			),
			// Provide throttles
			fx.Annotate(
				func(cfg *config.AppConfig) Throttles {
					return Throttles{
						Login: throttle.NewLoginThrottle(cfg.Auth.LoginThrottle),
						Email: throttle.NewEmailThrottle(cfg.Auth.EmailThrottle),
					}
				},
			),
			// Provide service
			fx.Annotate(
				func(deps serviceDeps) *Service {
					return NewService(ServiceParams{
						Config:        &deps.Config.Auth,
						Logger:        deps.Logger,
						Store:         deps.Store,
						Hasher:        deps.Hasher,
						Issuer:        deps.Issuer,
						LoginThrottle: deps.LoginThrottle,
						EmailThrottle: deps.EmailThrottle,
						Sender:        deps.Sender,
						Links:         deps.Links,
					})
				},
			),
		),
	)
}

package email

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/andrzej-wegierski/identiverse-backend/internal/config"
)

// NewModule returns the email module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(log *zap.Logger) Sender {
					return NewLogSender(log)
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig) *Links {
					return NewLinks(&cfg.Auth.Links)
				},
			),
		),
	)
}

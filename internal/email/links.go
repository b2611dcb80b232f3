package email

import (
	"net/url"

	"github.com/andrzej-wegierski/identiverse-backend/internal/config"
)

// Links builds the frontend URLs embedded in confirmation and reset emails.
type Links struct {
	config *config.LinksConfig
}

func NewLinks(config *config.LinksConfig) *Links {
	return &Links{config: config}
}

func (l *Links) ConfirmEmail(email, encodedToken string) string {
	return l.build(l.config.ConfirmEmailPath, email, encodedToken)
}

func (l *Links) ResetPassword(email, encodedToken string) string {
	return l.build(l.config.ResetPasswordPath, email, encodedToken)
}

func (l *Links) build(path, email, encodedToken string) string {
	return l.config.BaseURL + path +
		"?email=" + url.QueryEscape(email) +
		"&token=" + url.QueryEscape(encodedToken)
}

// Package infobip talks to the communications platform: it provisions the
// omni failover scenarios and sends messages to the recipient list.
package infobip

import (
	"alert-notifier/internal/config"
	"alert-notifier/pkg/restclient"
)

// NewClient builds the API-key authenticated platform client from cfg.
func NewClient(cfg config.Config, opts ...restclient.Option) *restclient.Client {
	opts = append([]restclient.Option{restclient.WithHeader("User-Agent", cfg.HTTP.UserAgent)}, opts...)
	return restclient.New(cfg.Infobip.BaseURL, restclient.APIKeyAuth{Key: cfg.Infobip.APIKey}, opts...)
}

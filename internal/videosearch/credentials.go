package videosearch

import (
	"context"
	"log/slog"

	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/zalando/go-keyring"
)

// Credentials provides the API key of the video search service.
type Credentials interface {
	APIKey(ctx context.Context) (string, bool)
}

// StaticKey is a key taken from configuration or the environment.
type StaticKey string

// APIKey implements Credentials.
func (k StaticKey) APIKey(context.Context) (string, bool) {
	return string(k), k != ""
}

// KeyringKey reads the key from the OS keyring. Any keyring error, including a
// missing secret service, means the key is unavailable.
type KeyringKey struct {
	Service string
	User    string
}

// APIKey implements Credentials.
func (k KeyringKey) APIKey(context.Context) (string, bool) {
	secret, err := keyring.Get(k.Service, k.User)
	if err != nil {
		slog.Debug(config.MsgKeyringMissing,
			config.LogKeyComponent, config.CompVideoSearch,
			config.LogKeyError, err,
		)
		return "", false
	}
	return secret, secret != ""
}

// Chain returns the first available key.
type Chain []Credentials

// APIKey implements Credentials.
func (c Chain) APIKey(ctx context.Context) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if key, ok := p.APIKey(ctx); ok {
			return key, true
		}
	}
	return "", false
}

// DefaultCredentials checks the configured key, then the keyring entry of the application.
func DefaultCredentials(configured string) Credentials {
	return Chain{
		StaticKey(configured),
		KeyringKey{Service: config.KeyringService, User: config.KeyringUser},
	}
}

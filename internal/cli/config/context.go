package config

import "context"

// configKey is used to store the loaded config in context.
type configKey struct{}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config stored by the root command. Commands run
// outside the root (tests, embedding) get the defaults.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok && c != nil {
		return c
	}
	return Default()
}

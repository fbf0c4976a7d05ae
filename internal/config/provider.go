package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingConfig is matched by every MissingConfigError.
var ErrMissingConfig = errors.New("missing required configuration")

// MissingConfigError names the required key that was absent.
type MissingConfigError struct {
	Key string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingConfig, e.Key)
}

func (e *MissingConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// Provider distinguishes required lookups, which fail on absent or blank
// values, from optional ones.
type Provider struct {
	v *viper.Viper
}

// NewProvider wraps an existing viper instance. Load builds one from the
// environment; tests build their own.
func NewProvider(v *viper.Viper) *Provider {
	return &Provider{v: v}
}

func (p *Provider) GetOrThrow(key string) (string, error) {
	value, ok := p.Get(key)
	if !ok {
		return "", &MissingConfigError{Key: key}
	}
	return value, nil
}

func (p *Provider) Get(key string) (string, bool) {
	if p == nil || p.v == nil {
		return "", false
	}
	value := strings.TrimSpace(p.v.GetString(key))
	if value == "" {
		return "", false
	}
	return value, true
}

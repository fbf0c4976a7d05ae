package storage

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

const (
	keyEndpoint  = "STORAGE_ENDPOINT"
	keyPort      = "STORAGE_PORT"
	keyUseSSL    = "STORAGE_USE_SSL"
	keyRegion    = "STORAGE_REGION"
	keyAccessKey = "STORAGE_ACCESS_KEY"
	keySecretKey = "STORAGE_SECRET_KEY"
)

// SupabaseMarker identifies Supabase Storage endpoints. Its S3 gateway lives
// under a path the client cannot compose, so only the hostname is kept and
// the public path is carried by STORAGE_URL instead.
const SupabaseMarker = "supabase.co"

// ConfigSource is the startup-time source of named configuration values.
// GetOrThrow fails when a key is absent; Get reports absence with false.
type ConfigSource interface {
	GetOrThrow(key string) (string, error)
	Get(key string) (string, bool)
}

// InvalidConfigError reports a present but unparsable configuration value.
type InvalidConfigError struct {
	Key   string
	Value string
	Err   error
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Key, e.Err)
}

func (e *InvalidConfigError) Unwrap() error {
	return e.Err
}

// ClientConfig is the connection configuration for the object store. It is
// built once at startup and never mutated.
type ClientConfig struct {
	Endpoint  string
	Port      int
	UseSSL    bool
	Region    string
	AccessKey string
	SecretKey string
}

// LoadClientConfig resolves the storage connection settings from src.
// A missing required key is returned unchanged so callers can match the
// provider's own error type.
func LoadClientConfig(src ConfigSource) (ClientConfig, error) {
	endpoint, err := src.GetOrThrow(keyEndpoint)
	if err != nil {
		return ClientConfig{}, err
	}

	rawPort, err := src.GetOrThrow(keyPort)
	if err != nil {
		return ClientConfig{}, err
	}
	port, err := cast.ToIntE(rawPort)
	if err != nil {
		return ClientConfig{}, &InvalidConfigError{Key: keyPort, Value: rawPort, Err: err}
	}
	if port <= 0 || port > 65535 {
		return ClientConfig{}, &InvalidConfigError{Key: keyPort, Value: rawPort, Err: fmt.Errorf("port out of range")}
	}

	rawSSL, err := src.GetOrThrow(keyUseSSL)
	if err != nil {
		return ClientConfig{}, err
	}
	useSSL, err := cast.ToBoolE(rawSSL)
	if err != nil {
		return ClientConfig{}, &InvalidConfigError{Key: keyUseSSL, Value: rawSSL, Err: err}
	}

	region, _ := src.Get(keyRegion)

	accessKey, err := src.GetOrThrow(keyAccessKey)
	if err != nil {
		return ClientConfig{}, err
	}
	secretKey, err := src.GetOrThrow(keySecretKey)
	if err != nil {
		return ClientConfig{}, err
	}

	return ClientConfig{
		Endpoint:  NormalizeEndpoint(endpoint),
		Port:      port,
		UseSSL:    useSSL,
		Region:    region,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}, nil
}

// NormalizeEndpoint strips everything from the first "/" on for Supabase
// endpoints. Any other endpoint is returned as is.
func NormalizeEndpoint(endpoint string) string {
	if strings.Contains(endpoint, SupabaseMarker) {
		return strings.Split(endpoint, "/")[0]
	}
	return endpoint
}

// Address is the host:port pair handed to the client library.
func (c ClientConfig) Address() string {
	return net.JoinHostPort(c.Endpoint, strconv.Itoa(c.Port))
}

func (c ClientConfig) Scheme() string {
	if c.UseSSL {
		return "https"
	}
	return "http"
}

// BaseURL is scheme://host:port without any path.
func (c ClientConfig) BaseURL() string {
	return c.Scheme() + "://" + c.Address()
}

// String omits both keys so the config can be logged.
func (c ClientConfig) String() string {
	return fmt.Sprintf("endpoint=%s port=%d ssl=%t region=%q", c.Endpoint, c.Port, c.UseSSL, c.Region)
}

package storage

import "fmt"

const (
	DriverMinio = "minio"
	DriverS3    = "s3"
)

// NewBackend builds the Backend selected by driver.
func NewBackend(driver string, cfg ClientConfig) (Backend, error) {
	switch driver {
	case "", DriverMinio:
		client, err := NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return NewMinioBackend(client), nil
	case DriverS3:
		return NewS3Backend(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}

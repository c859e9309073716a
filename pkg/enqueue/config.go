package enqueue

import (
	"fmt"
	"time"
)

// Config holds the connection settings for the host's queue API. The core
// processor carries no configuration of its own; everything boundary-facing
// is passed in here explicitly.
type Config struct {
	// Host is the API host. The backend serves on localhost in a stock
	// installation.
	Host string

	// Port is the API port.
	Port int

	// Path is the enqueue endpoint path.
	Path string

	// Timeout bounds the whole request, including reading the response.
	Timeout time.Duration

	// UserAgent identifies this client to the backend.
	UserAgent string
}

// DefaultConfig returns a configuration matching a local backend with stock
// settings.
func DefaultConfig() *Config {
	return &Config{
		Host:      "localhost",
		Port:      9090,
		Path:      "/api/v1/queue/default/enqueue_batch",
		Timeout:   30 * time.Second,
		UserAgent: "workflow-processor-node/1.0",
	}
}

// BaseURL returns the scheme://host:port prefix for requests. The backend
// API is plain HTTP on the loopback interface.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

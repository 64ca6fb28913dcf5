package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/ssargent/saveslot/pkg/codec"
	"github.com/ssargent/saveslot/pkg/store"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SaveInfoResponse describes a stored record
type SaveInfoResponse struct {
	Name string `json:"name"`
	Path string `json:"path"`
	*codec.Info
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind     string
	Port     int
	APIKey   string             // empty disables authentication
	Defaults store.SaveOptions  // transforms used when a PUT omits them
	Logger   logrus.FieldLogger // nil selects the standard logrus logger

	// Registerer and Gatherer back the HTTP metrics and the /metrics
	// endpoint. nil selects the prometheus defaults.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// ISaveStore defines the save store operations the API needs
type ISaveStore interface {
	Save(name string, data []byte, opts store.SaveOptions) error
	TryLoad(name string) ([]byte, bool, error)
	Delete(name string) error
	Exists(name string) bool
	List() ([]string, error)
	FilePath(name string, createDir bool) (string, error)
	Inspect(name string) (*codec.Info, error)
}

// Package di provides dependency injection container
package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ssargent/saveslot/pkg/api" //nolint:depguard
)

// Container holds all the dependencies for the application
type Container struct {
	registry      *prometheus.Registry
	storeFactory  StoreFactory
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Container{
		registry:      registry,
		storeFactory:  NewStoreFactory(registry),
		serverFactory: api.NewServerFactory(),
	}
}

// Registry returns the metrics registry shared by the store and the API server
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}

// GetStoreFactory returns the save store factory
func (c *Container) GetStoreFactory() StoreFactory {
	return c.storeFactory
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetStoreFactory allows overriding the store factory (for testing)
func (c *Container) SetStoreFactory(factory StoreFactory) {
	c.storeFactory = factory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

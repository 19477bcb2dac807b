package jobboard

import (
	"time"

	"github.com/goliatone/go-router"
	metrics "github.com/rcrowley/go-metrics"

	"github.com/goliatone/go-jobboard/middleware/jwtware"
)

// Metrics records counters and timings
type Metrics interface {
	Increment(name string)
	Time(name string, d time.Duration)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) Increment(string)           {}
func (NopMetrics) Time(string, time.Duration) {}

// RegistryMetrics records into a go-metrics registry
type RegistryMetrics struct {
	registry metrics.Registry
	prefix   string
}

// NewRegistryMetrics wraps registry, nil selects the default registry
func NewRegistryMetrics(registry metrics.Registry, prefix string) *RegistryMetrics {
	if registry == nil {
		registry = metrics.DefaultRegistry
	}
	return &RegistryMetrics{registry: registry, prefix: prefix}
}

func (m *RegistryMetrics) name(n string) string {
	if m.prefix == "" {
		return n
	}
	return m.prefix + "." + n
}

func (m *RegistryMetrics) Increment(name string) {
	metrics.GetOrRegisterCounter(m.name(name), m.registry).Inc(1)
}

func (m *RegistryMetrics) Time(name string, d time.Duration) {
	metrics.GetOrRegisterTimer(m.name(name), m.registry).Update(d)
}

// Registry returns the underlying registry
func (m *RegistryMetrics) Registry() metrics.Registry {
	return m.registry
}

// SessionMetricsListener counts verified sessions at the gate
func SessionMetricsListener(m Metrics) jwtware.ValidationListener {
	return func(_ router.Context, _ jwtware.Claims) error {
		m.Increment("auth.verified")
		return nil
	}
}

package ioc

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Resolution outcomes.
const (
	outcomeCached = "cached"
	outcomeBuilt  = "built"
	outcomeFailed = "failed"
)

// Build kinds.
const (
	buildFactory  = "factory"
	buildValue    = "value"
	buildAlias    = "alias"
	buildAutowire = "autowire"
)

// metrics counts resolutions. Collectors always exist so counting never
// branches; they are only exported when a registerer is configured.
type metrics struct {
	resolutions *prometheus.CounterVec
	builds      *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, logger *zap.Logger) *metrics {
	m := &metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ioc",
			Name:      "resolutions_total",
			Help:      "Key resolutions by outcome.",
		}, []string{"outcome"}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ioc",
			Name:      "builds_total",
			Help:      "Instances built by descriptor kind.",
		}, []string{"kind"}),
	}

	if reg == nil {
		return m
	}

	m.resolutions = register(reg, m.resolutions, logger)
	m.builds = register(reg, m.builds, logger)
	return m
}

// register registers c, reusing an identical collector that is already
// registered so several containers can share one registry.
func register(reg prometheus.Registerer, c *prometheus.CounterVec, logger *zap.Logger) *prometheus.CounterVec {
	err := reg.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing
		}
	}

	logger.Warn("failed to register metrics", zap.Error(err))
	return c
}

func (m *metrics) resolved(outcome string) {
	m.resolutions.WithLabelValues(outcome).Inc()
}

func (m *metrics) built(kind string) {
	m.builds.WithLabelValues(kind).Inc()
}

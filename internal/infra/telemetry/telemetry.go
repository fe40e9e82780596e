package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arklim/social-platform-authguard/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	decisionCounter *prometheus.CounterVec
	lockCounter     prometheus.Counter
	killedCounter   prometheus.Counter
}

// Attach configures telemetry exporters and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	decisionCounter := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authguard",
		Name:      "login_decisions_total",
		Help:      "Login attempts partitioned by guard outcome",
	}, []string{"outcome"})

	lockCounter := promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "authguard",
		Name:      "accounts_locked_total",
		Help:      "Accounts locked after exhausting failed attempts",
	})

	killedCounter := promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "authguard",
		Name:      "sessions_killed_total",
		Help:      "Sessions deactivated in favour of a newer login",
	})

	return &Provider{
		decisionCounter: decisionCounter,
		lockCounter:     lockCounter,
		killedCounter:   killedCounter,
	}, nil
}

// ObserveDecision counts a guard decision by outcome.
func (p *Provider) ObserveDecision(outcome string) {
	if p == nil {
		return
	}
	p.decisionCounter.WithLabelValues(outcome).Inc()
}

// ObserveLock counts an account lock.
func (p *Provider) ObserveLock() {
	if p == nil {
		return
	}
	p.lockCounter.Inc()
}

// ObserveSessionsKilled counts sessions deactivated by a newer login.
func (p *Provider) ObserveSessionsKilled(count int) {
	if p == nil || count <= 0 {
		return
	}
	p.killedCounter.Add(float64(count))
}

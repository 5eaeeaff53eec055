// Tracks run-wide counters such as sends by policy and outcome, hop
// fallbacks, QKD session outcomes and optimizer progress.

package sim

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quasarfabric/hybridnet-sim/sim/qkd"
)

// Operation label values.
const (
	OpSend         = "send"
	OpSendReliable = "send_reliable"
)

// RunMetrics aggregates Prometheus counters for one CLI run or test.
// All Observe methods are no-ops on a nil receiver, so instrumented code
// need not check whether metrics are enabled.
type RunMetrics struct {
	gatherer prometheus.Gatherer

	Sends           *prometheus.CounterVec // operation, policy, mode, outcome
	Hops            *prometheus.CounterVec // mode, result
	Fallbacks       prometheus.Counter
	ClassicalLosses prometheus.Counter
	QKDSessions     *prometheus.CounterVec // outcome

	OptimizerEvaluations prometheus.Counter
	OptimizerBestReward  prometheus.Gauge
}

// NewRunMetrics registers the run metrics against reg. A nil reg uses a
// fresh private registry.
func NewRunMetrics(reg prometheus.Registerer) (*RunMetrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	sends, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hybridnet_sends_total",
		Help: "Sends handled by the router, labeled by operation, policy, transport mode and outcome.",
	}, []string{"operation", "policy", "mode", "outcome"}), "hybridnet_sends_total")
	if err != nil {
		return nil, err
	}
	hops, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hybridnet_hops_total",
		Help: "Hops executed by reliable sends, labeled by transport mode and result.",
	}, []string{"mode", "result"}), "hybridnet_hops_total")
	if err != nil {
		return nil, err
	}
	fallbacks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hybridnet_fallbacks_total",
		Help: "Reliable sends that replanned a classical tail after a quantum hop failed.",
	}), "hybridnet_fallbacks_total")
	if err != nil {
		return nil, err
	}
	losses, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hybridnet_classical_losses_total",
		Help: "Classical hops recorded as lost but traversed during reliable sends.",
	}), "hybridnet_classical_losses_total")
	if err != nil {
		return nil, err
	}
	sessions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hybridnet_qkd_sessions_total",
		Help: "QKD sessions, labeled by outcome (success or abort reason).",
	}, []string{"outcome"}), "hybridnet_qkd_sessions_total")
	if err != nil {
		return nil, err
	}
	evals, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hybridnet_optimizer_evaluations_total",
		Help: "Repeater masks whose reward was evaluated.",
	}), "hybridnet_optimizer_evaluations_total")
	if err != nil {
		return nil, err
	}
	best, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hybridnet_optimizer_best_reward",
		Help: "Best repeater-placement reward found so far.",
	}), "hybridnet_optimizer_best_reward")
	if err != nil {
		return nil, err
	}

	return &RunMetrics{
		gatherer:             gatherer,
		Sends:                sends,
		Hops:                 hops,
		Fallbacks:            fallbacks,
		ClassicalLosses:      losses,
		QKDSessions:          sessions,
		OptimizerEvaluations: evals,
		OptimizerBestReward:  best,
	}, nil
}

// ObserveSend records a single-shot send.
func (m *RunMetrics) ObserveSend(res SendResult) {
	if m == nil {
		return
	}
	m.Sends.WithLabelValues(OpSend, res.Policy, string(res.Mode), outcomeLabel(res.Success, res.Reason)).Inc()
}

// ObserveReliable records a reliable send and every hop in its history.
func (m *RunMetrics) ObserveReliable(res ReliableResult) {
	if m == nil {
		return
	}
	m.Sends.WithLabelValues(OpSendReliable, res.Policy, string(res.Mode), outcomeLabel(res.Success, res.Reason)).Inc()
	if res.FellBack {
		m.Fallbacks.Inc()
	}
	m.ClassicalLosses.Add(float64(res.ClassicalLosses))
	if res.History == nil {
		return
	}
	for _, h := range res.History.Records {
		result := "ok"
		if !h.Success {
			result = "failed"
		}
		m.Hops.WithLabelValues(h.Mode, result).Inc()
	}
}

// ObserveQKD records a QKD session outcome.
func (m *RunMetrics) ObserveQKD(res qkd.Result) {
	if m == nil {
		return
	}
	outcome := "success"
	if !res.Success {
		outcome = string(res.Reason)
	}
	m.QKDSessions.WithLabelValues(outcome).Inc()
}

// ObserveEvaluation records one optimizer reward evaluation.
func (m *RunMetrics) ObserveEvaluation() {
	if m == nil {
		return
	}
	m.OptimizerEvaluations.Inc()
}

// ObserveBestReward records the optimizer's current best reward.
func (m *RunMetrics) ObserveBestReward(reward float64) {
	if m == nil {
		return
	}
	m.OptimizerBestReward.Set(reward)
}

// WriteTextfile writes every gathered metric to path in the Prometheus
// text exposition format (node-exporter textfile collector layout).
func (m *RunMetrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

func outcomeLabel(success bool, reason FailureReason) string {
	if success {
		return "success"
	}
	if reason == ReasonNone {
		return "failure"
	}
	return string(reason)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

package sim

import "github.com/quasarfabric/hybridnet-sim/sim/qkd"

// LinkConfig groups the per-hop physical model parameters.
// All values are modeling placeholders, not hardware-accurate.
type LinkConfig struct {
	CoherenceLengthKm  float64 `yaml:"coherence_length_km" validate:"gt=0"`        // decoherence length scale L in exp(-d/L)
	SwapSuccessProb    float64 `yaml:"swap_success_prob" validate:"gte=0,lte=1"`   // entanglement swap success at a storage-capable node
	InterceptFailProb  float64 `yaml:"intercept_fail_prob" validate:"gte=0,lte=1"` // quantum signal over a non-quantum link
	BaseLoss           float64 `yaml:"base_loss" validate:"gte=0,lte=1"`           // classical packet loss before congestion noise
	CongestionNoiseStd float64 `yaml:"congestion_noise_std" validate:"gte=0"`      // σ of Gaussian noise added to BaseLoss
	BaseLatencyMsPerKm float64 `yaml:"base_latency_ms_per_km" validate:"gte=0"`    // classical propagation latency
	JitterStdMs        float64 `yaml:"jitter_std_ms" validate:"gte=0"`             // σ of per-hop latency jitter
	TranslationDelayMs float64 `yaml:"translation_delay_ms" validate:"gte=0"`      // cost per quantum↔classical boundary
}

// MonteCarloConfig groups trial-count parameters for path comparison.
type MonteCarloConfig struct {
	Trials int `yaml:"trials" validate:"gte=1"`
}

// RepeaterConfig groups repeater-placement optimizer parameters.
type RepeaterConfig struct {
	MaxRepeaters    int     `yaml:"max_repeaters" validate:"gte=0"`
	CostPerRepeater float64 `yaml:"cost_per_repeater" validate:"gte=0"`
	Iterations      int     `yaml:"iterations" validate:"gte=0"`
	Trials          int     `yaml:"trials" validate:"gte=1"` // quantum-path simulations per reward evaluation
	PromoteLinks    bool    `yaml:"promote_links"`           // treat edges between upgraded nodes as quantum links
}

// Config is the full tunable surface of the simulator, loadable from YAML.
type Config struct {
	Seed       int64            `yaml:"seed"`
	Link       LinkConfig       `yaml:"link"`
	MonteCarlo MonteCarloConfig `yaml:"monte_carlo"`
	Repeater   RepeaterConfig   `yaml:"repeater"`
	QKD        qkd.Config       `yaml:"qkd"`
}

// DefaultLinkConfig returns the reference link parameters.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		CoherenceLengthKm:  50.0,
		SwapSuccessProb:    0.85,
		InterceptFailProb:  0.5,
		BaseLoss:           0.01,
		CongestionNoiseStd: 0.02,
		BaseLatencyMsPerKm: 0.005, // ~5µs/km
		JitterStdMs:        0.2,
		TranslationDelayMs: 2.0,
	}
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Seed:       42,
		Link:       DefaultLinkConfig(),
		MonteCarlo: MonteCarloConfig{Trials: 1000},
		Repeater: RepeaterConfig{
			MaxRepeaters:    3,
			CostPerRepeater: 0.01,
			Iterations:      1500,
			Trials:          200,
		},
		QKD: qkd.DefaultConfig(),
	}
}

package qkd

// Config holds the decoy-state BB84 session parameters.
type Config struct {
	Pulses            int     `yaml:"pulses" validate:"gte=1"`                   // pulses sent per session
	DecoyFraction     float64 `yaml:"decoy_fraction" validate:"gte=0,lte=1"`     // share of pulses tagged decoy
	ChannelEfficiency float64 `yaml:"channel_efficiency" validate:"gte=0,lte=1"` // channel+detector efficiency η
	NoiseFlipProb     float64 `yaml:"noise_flip_prob" validate:"gte=0,lte=1"`    // bit flip on basis-matched measurement
	Eavesdropper      bool    `yaml:"eavesdropper"`                              // enable the photon-number-splitting attacker
	PNSDropFraction   float64 `yaml:"pns_drop_fraction" validate:"gte=0,lte=1"`  // detected decoys the attacker blocks
	QBERLimit         float64 `yaml:"qber_limit" validate:"gte=0,lte=1"`         // abort above this error rate
	YieldGapLimit     float64 `yaml:"yield_gap_limit" validate:"gte=0,lte=1"`    // abort above this |Ysig − Ydec|
	SampleFraction    float64 `yaml:"sample_fraction" validate:"gt=0,lte=1"`     // sifted bits disclosed for QBER
}

// DefaultConfig returns the reference session parameters.
func DefaultConfig() Config {
	return Config{
		Pulses:            10_000,
		DecoyFraction:     0.25,
		ChannelEfficiency: 0.25,
		NoiseFlipProb:     0.01,
		PNSDropFraction:   0.6,
		QBERLimit:         0.11,
		YieldGapLimit:     0.05,
		SampleFraction:    0.02,
	}
}

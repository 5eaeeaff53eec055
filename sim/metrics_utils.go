package sim

import "gonum.org/v1/gonum/stat"

// ModeSummary aggregates Monte Carlo records of one transport mode.
type ModeSummary struct {
	Mode           TransportMode
	Trials         int
	SuccessRate    float64
	SuccessStdDev  float64
	MeanHops       float64
	MeanDistanceKm float64
	MeanLatencyMs  float64
}

// SummarizeTrials groups records by mode (in order of first appearance) and
// computes mean success rate, hops, distance and latency for each.
// Returns nil for empty input.
func SummarizeTrials(records []TrialRecord) []ModeSummary {
	if len(records) == 0 {
		return nil
	}
	type columns struct {
		success, hops, dist, latency []float64
	}
	var order []TransportMode
	byMode := make(map[TransportMode]*columns)
	for _, r := range records {
		c, ok := byMode[r.Outcome.Mode]
		if !ok {
			c = &columns{}
			byMode[r.Outcome.Mode] = c
			order = append(order, r.Outcome.Mode)
		}
		s := 0.0
		if r.Outcome.Success {
			s = 1
		}
		c.success = append(c.success, s)
		c.hops = append(c.hops, float64(r.Outcome.Hops))
		c.dist = append(c.dist, r.Outcome.TotalDistanceKm)
		c.latency = append(c.latency, r.Outcome.TotalLatencyMs)
	}

	summaries := make([]ModeSummary, 0, len(order))
	for _, mode := range order {
		c := byMode[mode]
		rate, std := stat.MeanStdDev(c.success, nil)
		if len(c.success) < 2 {
			std = 0 // sample stddev is NaN for a single observation
		}
		summaries = append(summaries, ModeSummary{
			Mode:           mode,
			Trials:         len(c.success),
			SuccessRate:    rate,
			SuccessStdDev:  std,
			MeanHops:       stat.Mean(c.hops, nil),
			MeanDistanceKm: stat.Mean(c.dist, nil),
			MeanLatencyMs:  stat.Mean(c.latency, nil),
		})
	}
	return summaries
}

package trace

// HistorySummary aggregates statistics from an ExecutionHistory.
type HistorySummary struct {
	Hops              int
	QuantumHops       int
	ClassicalHops     int
	FailedQuantumHops int
	LostClassicalHops int
	FallbackHops      int
	BoundaryCrossings int // adjacent hops whose modes differ
	TotalDistanceKm   float64
	TotalLatencyMs    float64
	ModeDistribution  map[string]int // mode → hop count
}

// Summarize computes aggregate statistics from an ExecutionHistory.
// Safe for nil or empty histories (returns zero-value fields).
func Summarize(h *ExecutionHistory) *HistorySummary {
	summary := &HistorySummary{
		ModeDistribution: make(map[string]int),
	}
	if h == nil {
		return summary
	}

	summary.Hops = len(h.Records)
	for i, r := range h.Records {
		summary.ModeDistribution[r.Mode]++
		summary.TotalDistanceKm += r.DistanceKm
		summary.TotalLatencyMs += r.LatencyMs
		switch r.Mode {
		case ModeQuantum:
			summary.QuantumHops++
			if !r.Success {
				summary.FailedQuantumHops++
			}
		case ModeClassical:
			summary.ClassicalHops++
			if !r.Success {
				summary.LostClassicalHops++
			}
		}
		if r.Fallback {
			summary.FallbackHops++
		}
		if i > 0 && h.Records[i-1].Mode != r.Mode {
			summary.BoundaryCrossings++
		}
	}

	return summary
}

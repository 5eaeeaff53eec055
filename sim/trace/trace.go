package trace

// ExecutionHistory is the ordered list of hops executed by one reliable send.
type ExecutionHistory struct {
	Records []HopRecord
}

// NewExecutionHistory creates an ExecutionHistory ready for recording.
func NewExecutionHistory() *ExecutionHistory {
	return &ExecutionHistory{
		Records: make([]HopRecord, 0),
	}
}

// Record appends a hop record, assigning its Step.
func (h *ExecutionHistory) Record(record HopRecord) {
	record.Step = len(h.Records)
	h.Records = append(h.Records, record)
}

// Len returns the number of recorded hops. Safe on nil.
func (h *ExecutionHistory) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Records)
}

// FirstFallback returns the index of the first fallback record, or -1.
func (h *ExecutionHistory) FirstFallback() int {
	if h == nil {
		return -1
	}
	for i, r := range h.Records {
		if r.Fallback {
			return i
		}
	}
	return -1
}

package ports

// MatchMetrics receives counters from the matching and status use cases.
type MatchMetrics interface {
	SearchCompleted(mode string, candidates int)
	CandidateDropped(reason string)
	StatusChanged(to string, ok bool)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) SearchCompleted(string, int) {}
func (NopMetrics) CandidateDropped(string) {}
func (NopMetrics) StatusChanged(string, bool) {}

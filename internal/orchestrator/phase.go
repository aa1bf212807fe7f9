package orchestrator

// Phase identifies where a pipeline run currently is, or where it stopped.
type Phase int

const (
	PhaseGathering Phase = iota
	PhaseAnalyzing
	PhaseValidating
	PhaseSynthesizing
	PhaseDone
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhaseGathering:    "gathering",
	PhaseAnalyzing:    "analyzing",
	PhaseValidating:   "validating",
	PhaseSynthesizing: "synthesizing",
	PhaseDone:         "done",
	PhaseFailed:       "failed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

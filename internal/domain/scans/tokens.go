package scans

// Estimate is a display-only token guess for a phase whose usage the
// backend reported as zero.
type Estimate struct {
	Input  int
	Output int
}

// fallbackEstimates must never be mutated; read it through FallbackEstimate.
var fallbackEstimates = map[string]Estimate{
	"Ecosystem Detection": {Input: 150, Output: 200},
	"Remediation":         {Input: 400, Output: 600},
}

// FallbackEstimate returns the fixed estimate for an AI-backed step.
func FallbackEstimate(step string) (Estimate, bool) {
	e, ok := fallbackEstimates[step]
	return e, ok
}

// FallbackSteps lists the steps covered by the estimate table.
func FallbackSteps() []string {
	out := make([]string, 0, len(fallbackEstimates))
	for step := range fallbackEstimates {
		out = append(out, step)
	}
	return out
}

// EffectiveInput is the reported input tokens, or the step estimate when
// nothing was reported. Never negative.
func (l ScanLog) EffectiveInput() int {
	if l.TokensInput > 0 {
		return l.TokensInput
	}
	e, _ := FallbackEstimate(l.Step)
	return e.Input
}

// EffectiveOutput mirrors EffectiveInput for output tokens.
func (l ScanLog) EffectiveOutput() int {
	if l.TokensOutput > 0 {
		return l.TokensOutput
	}
	e, _ := FallbackEstimate(l.Step)
	return e.Output
}

// EffectiveTotal is always recomputed from the effective parts, the
// reported tokens_total is ignored for display.
func (l ScanLog) EffectiveTotal() int {
	return l.EffectiveInput() + l.EffectiveOutput()
}

// Usage value object
type Usage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// SumUsage adds up the fallback-aware usage of every log.
func SumUsage(logs []ScanLog) Usage {
	var u Usage
	for _, l := range logs {
		u.Input += l.EffectiveInput()
		u.Output += l.EffectiveOutput()
		u.Total += l.EffectiveTotal()
	}
	return u
}

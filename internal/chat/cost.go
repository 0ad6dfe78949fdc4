package chat

import "strings"

// estimateCostUSD approximates a turn's cost for the session aggregate
// (spec §4.8 step 4). The authoritative per-attempt cost lives in the
// Usage Ledger (internal/router/cost.go); this is a lighter session-level
// rollup keyed by model name substring since the session doesn't know
// which provider ultimately served the turn.
func estimateCostUSD(model string, inputTokens, outputTokens int) float64 {
	m := strings.ToLower(model)
	var inRate, outRate float64
	switch {
	case strings.Contains(m, "sonnet"):
		inRate, outRate = 0.003, 0.015
	case strings.Contains(m, "haiku"):
		inRate, outRate = 0.0008, 0.004
	case strings.Contains(m, "gpt"):
		inRate, outRate = 0.00015, 0.0006
	default:
		inRate, outRate = 0.001, 0.002
	}
	return (float64(inputTokens)/1000)*inRate + (float64(outputTokens)/1000)*outRate
}

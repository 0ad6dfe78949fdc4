package router

// costFor computes the USD cost of one provider attempt from a constant
// cost table keyed by provider (spec §4.4: "flat fee for identification,
// per-1K-token linear fee for LLMs and embeddings"). Failed attempts cost
// nothing since no billable work completed.
func costFor(provider string, inputTokens, outputTokens int, success bool) float64 {
	if !success {
		return 0
	}
	switch provider {
	case "plant-id", "plant-id-health":
		return flatFeeUSD[provider]
	case "gemini":
		return flatFeeUSD[provider]
	default:
		rate, ok := tokenRateUSDPer1K[provider]
		if !ok {
			return 0
		}
		return (float64(inputTokens)/1000)*rate.input + (float64(outputTokens)/1000)*rate.output
	}
}

var flatFeeUSD = map[string]float64{
	"plant-id":        0.02,
	"plant-id-health": 0.03,
	"gemini":          0.00125,
}

type tokenRate struct {
	input  float64
	output float64
}

var tokenRateUSDPer1K = map[string]tokenRate{
	"llm-primary-complex": {input: 0.003, output: 0.015},
	"llm-primary-simple":  {input: 0.0008, output: 0.004},
	"llm-fallback":        {input: 0.00015, output: 0.0006},
	"embedding":           {input: 0.00002, output: 0},
}

package llm

// Per-million-token prices in USD. Local models cost nothing.
var modelPricing = map[string]struct {
	InputPerMillion  float64
	OutputPerMillion float64
}{
	"gpt-4o":                    {2.50, 10.00},
	"gpt-4o-mini":               {0.15, 0.60},
	"gpt-4-turbo":               {10.00, 30.00},
	"gpt-3.5-turbo":             {0.50, 1.50},
	"text-embedding-3-small":    {0.02, 0},
	"text-embedding-3-large":    {0.13, 0},
	"claude-3-opus-20240229":    {15.00, 75.00},
	"claude-3-sonnet-20240229":  {3.00, 15.00},
	"claude-3-haiku-20240307":   {0.25, 1.25},
	"claude-sonnet-4-20250514":  {3.00, 15.00},
	"claude-opus-4-20250514":    {15.00, 75.00},
}

// CalculateCost returns the USD cost of a call, or 0 for unknown models.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	p, ok := modelPricing[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1_000_000*p.InputPerMillion +
		float64(outputTokens)/1_000_000*p.OutputPerMillion
}

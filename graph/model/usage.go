package model

import (
	"fmt"
	"maps"
	"sync"
	"time"
)

// Pricing defines input and output token costs for a model, in USD per
// 1M tokens.
type Pricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// Static pricing for major providers. Prices change; update this table
// when providers adjust theirs, or override per model with SetPricing.
var defaultPricing = map[string]Pricing{
	// OpenAI
	"gpt-4o":        {InputPer1M: 2.50, OutputPer1M: 10.00},
	"gpt-4o-mini":   {InputPer1M: 0.15, OutputPer1M: 0.60},
	"gpt-4-turbo":   {InputPer1M: 10.00, OutputPer1M: 30.00},
	"gpt-3.5-turbo": {InputPer1M: 0.50, OutputPer1M: 1.50},

	// Anthropic
	"claude-3-5-sonnet-20241022": {InputPer1M: 3.00, OutputPer1M: 15.00},
	"claude-3-opus-20240229":     {InputPer1M: 15.00, OutputPer1M: 75.00},
	"claude-3-haiku-20240307":    {InputPer1M: 0.25, OutputPer1M: 1.25},

	// Google
	"gemini-1.5-pro":   {InputPer1M: 1.25, OutputPer1M: 5.00},
	"gemini-1.5-flash": {InputPer1M: 0.075, OutputPer1M: 0.30},
}

// Call records a single model API invocation.
type Call struct {
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	At           time.Time
}

// UsageTracker accumulates token usage and estimated cost across model
// calls. Providers report into it through the Usage interface; a nil
// tracker is a valid no-op sink.
//
// Thread-safe.
type UsageTracker struct {
	mu           sync.RWMutex
	pricing      map[string]Pricing
	calls        []Call
	totalCost    float64
	modelCosts   map[string]float64
	inputTokens  int64
	outputTokens int64
}

// Usage is the reporting side of UsageTracker, implemented by *UsageTracker.
type Usage interface {
	Record(model string, inputTokens, outputTokens int)
}

// NewUsageTracker creates a tracker with the default pricing table.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		pricing:    maps.Clone(defaultPricing),
		modelCosts: make(map[string]float64),
	}
}

// Record adds one call's token counts. Models missing from the pricing
// table are recorded at zero cost rather than dropped.
func (t *UsageTracker) Record(model string, inputTokens, outputTokens int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.pricing[model]
	cost := (float64(inputTokens)/1_000_000)*p.InputPer1M +
		(float64(outputTokens)/1_000_000)*p.OutputPer1M

	t.calls = append(t.calls, Call{
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      cost,
		At:           time.Now(),
	})
	t.totalCost += cost
	t.modelCosts[model] += cost
	t.inputTokens += int64(inputTokens)
	t.outputTokens += int64(outputTokens)
}

// TotalCost returns the cumulative estimated cost in USD.
func (t *UsageTracker) TotalCost() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalCost
}

// CostByModel returns a copy of the per-model cost breakdown.
func (t *UsageTracker) CostByModel() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	costs := make(map[string]float64, len(t.modelCosts))
	for model, cost := range t.modelCosts {
		costs[model] = cost
	}
	return costs
}

// Calls returns a copy of all recorded calls in chronological order.
func (t *UsageTracker) Calls() []Call {
	t.mu.RLock()
	defer t.mu.RUnlock()

	calls := make([]Call, len(t.calls))
	copy(calls, t.calls)
	return calls
}

// Tokens returns total input and output token counts.
func (t *UsageTracker) Tokens() (input, output int64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inputTokens, t.outputTokens
}

// SetPricing overrides the price for one model, for custom deployments
// or stale-table corrections.
func (t *UsageTracker) SetPricing(model string, p Pricing) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pricing == nil {
		t.pricing = make(map[string]Pricing)
	}
	t.pricing[model] = p
}

// Reset clears recorded calls and totals, keeping pricing.
func (t *UsageTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = nil
	t.totalCost = 0
	t.modelCosts = make(map[string]float64)
	t.inputTokens = 0
	t.outputTokens = 0
}

// String summarizes the tracker for logs.
func (t *UsageTracker) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fmt.Sprintf("UsageTracker{Calls: %d, TotalCost: $%.4f, InputTokens: %d, OutputTokens: %d}",
		len(t.calls), t.totalCost, t.inputTokens, t.outputTokens)
}

// internal/selector/selector.go
package selector

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

// State keys. Round-robin state is global; weighted usage is tracked per
// session so each analysis run converges on its own ratios.
const (
	counterKey     = "selector:round_robin:counter"
	usageKeyPrefix = "selector:weighted:usage:"
	perfKeyPrefix  = "selector:performance:"
)

// Selector picks the next model to use under a configurable distribution
// strategy. All state lives in the injected Store, so the selector itself is
// stateless across invocations.
type Selector struct {
	store Store
}

func New(store Store) *Selector {
	return &Selector{store: store}
}

// SelectModel picks one model from the candidate list. Returns nil (no
// error) when no enabled model exists: callers treat that as "no provider
// available", not a failure. Store errors degrade to stateless behavior
// with a logged warning rather than failing the selection.
func (s *Selector) SelectModel(ctx context.Context, strategy, sessionID string, candidates []models.AIModel) (*models.AIModel, error) {
	enabled := make([]models.AIModel, 0, len(candidates))
	for _, m := range candidates {
		if m.IsEnabled {
			enabled = append(enabled, m)
		}
	}
	if len(enabled) == 0 {
		return nil, nil
	}

	switch strategy {
	case models.StrategyRoundRobin:
		return s.selectRoundRobin(ctx, enabled), nil
	case models.StrategyWeighted:
		return s.selectWeighted(ctx, sessionID, enabled), nil
	case models.StrategyRandom:
		return &enabled[rand.Intn(len(enabled))], nil
	case models.StrategyPerformance:
		return s.selectPerformance(ctx, enabled), nil
	default:
		fmt.Printf("[ModelSelector] ⚠️ Unknown strategy %q - defaulting to round_robin\n", strategy)
		return s.selectRoundRobin(ctx, enabled), nil
	}
}

// selectRoundRobin walks the enabled list with a persisted global counter.
// Ordering is only stable across calls while the model set is unchanged.
func (s *Selector) selectRoundRobin(ctx context.Context, enabled []models.AIModel) *models.AIModel {
	counter := 0
	if raw, ok, err := s.store.Get(ctx, counterKey); err != nil {
		fmt.Printf("[ModelSelector] ⚠️ Failed to read round-robin counter: %v\n", err)
	} else if ok {
		if parsed, err := strconv.Atoi(raw); err == nil {
			counter = parsed
		}
	}

	chosen := &enabled[counter%len(enabled)]

	if err := s.store.Put(ctx, counterKey, strconv.Itoa(counter+1), CounterTTL); err != nil {
		fmt.Printf("[ModelSelector] ⚠️ Failed to persist round-robin counter: %v\n", err)
	}
	return chosen
}

// selectWeighted treats each model's sort order as a desired-usage weight
// and picks the model currently furthest below its target share.
func (s *Selector) selectWeighted(ctx context.Context, sessionID string, enabled []models.AIModel) *models.AIModel {
	if sessionID == "" {
		sessionID = "global"
	}
	usageKey := usageKeyPrefix + sessionID

	usage := map[string]int{}
	if raw, ok, err := s.store.Get(ctx, usageKey); err != nil {
		fmt.Printf("[ModelSelector] ⚠️ Failed to read usage state: %v\n", err)
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &usage); err != nil {
			fmt.Printf("[ModelSelector] ⚠️ Corrupt usage state for session %s - resetting\n", sessionID)
			usage = map[string]int{}
		}
	}

	totalWeight := 0
	totalUsage := 0
	for _, m := range enabled {
		totalWeight += weightOf(m)
		totalUsage += usage[m.AIModelID.String()]
	}

	// Most under-served model relative to its weight; ties keep the first
	var chosen *models.AIModel
	bestGap := 0.0
	for i := range enabled {
		m := &enabled[i]
		desired := float64(weightOf(*m)) / float64(totalWeight)
		observed := 0.0
		if totalUsage > 0 {
			observed = float64(usage[m.AIModelID.String()]) / float64(totalUsage)
		}
		gap := observed - desired
		if chosen == nil || gap < bestGap {
			chosen = m
			bestGap = gap
		}
	}

	usage[chosen.AIModelID.String()]++
	if encoded, err := json.Marshal(usage); err == nil {
		if err := s.store.Put(ctx, usageKey, string(encoded), UsageTTL); err != nil {
			fmt.Printf("[ModelSelector] ⚠️ Failed to persist usage state: %v\n", err)
		}
	}
	return chosen
}

func weightOf(m models.AIModel) int {
	if m.Order <= 0 {
		return 1
	}
	return m.Order
}

// perfState accumulates rolling call outcomes per model
type perfState struct {
	TotalCalls      int     `json:"total_calls"`
	SuccessCalls    int     `json:"success_calls"`
	TotalLatencySec float64 `json:"total_latency_sec"`
}

func (p perfState) successRate() float64 {
	if p.TotalCalls == 0 {
		return 1.0
	}
	return float64(p.SuccessCalls) / float64(p.TotalCalls)
}

func (p perfState) avgLatencySec() float64 {
	if p.TotalCalls == 0 {
		return 1.0
	}
	return p.TotalLatencySec / float64(p.TotalCalls)
}

// score favors reliable, fast models. Models without history score the
// optimistic maximum so new models get traffic.
func (p perfState) score() float64 {
	avg := p.avgLatencySec()
	if avg < 1.0 {
		avg = 1.0
	}
	return p.successRate() * (10.0 / avg)
}

func (s *Selector) selectPerformance(ctx context.Context, enabled []models.AIModel) *models.AIModel {
	var chosen *models.AIModel
	bestScore := -1.0
	for i := range enabled {
		m := &enabled[i]
		score := s.readPerf(ctx, m.AIModelID).score()
		if score > bestScore {
			chosen = m
			bestScore = score
		}
	}
	return chosen
}

// UpdatePerformanceMetrics records one call outcome for a model. Callers
// invoke this after every provider call regardless of strategy so the
// performance_based strategy has data when it is switched on.
func (s *Selector) UpdatePerformanceMetrics(ctx context.Context, modelID uuid.UUID, success bool, latency time.Duration) {
	state := s.readPerf(ctx, modelID)
	state.TotalCalls++
	if success {
		state.SuccessCalls++
	}
	state.TotalLatencySec += latency.Seconds()

	encoded, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := s.store.Put(ctx, perfKeyPrefix+modelID.String(), string(encoded), MetricsTTL); err != nil {
		fmt.Printf("[ModelSelector] ⚠️ Failed to persist performance metrics for %s: %v\n", modelID, err)
	}
}

func (s *Selector) readPerf(ctx context.Context, modelID uuid.UUID) perfState {
	var state perfState
	raw, ok, err := s.store.Get(ctx, perfKeyPrefix+modelID.String())
	if err != nil {
		fmt.Printf("[ModelSelector] ⚠️ Failed to read performance metrics for %s: %v\n", modelID, err)
		return state
	}
	if !ok {
		return state
	}
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return perfState{}
	}
	return state
}

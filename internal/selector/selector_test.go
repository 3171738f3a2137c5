// internal/selector/selector_test.go
package selector

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

func testModel(name string, order int, enabled bool) models.AIModel {
	return models.AIModel{
		AIModelID: uuid.New(),
		Name:      name,
		IsEnabled: enabled,
		Order:     order,
	}
}

func TestSelectModelNoEnabledModels(t *testing.T) {
	s := New(NewMemoryStore())

	tests := []struct {
		name       string
		candidates []models.AIModel
	}{
		{name: "empty list", candidates: nil},
		{name: "all disabled", candidates: []models.AIModel{
			testModel("openai", 1, false),
			testModel("gemini", 1, false),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chosen, err := s.SelectModel(context.Background(), models.StrategyRoundRobin, "", tt.candidates)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if chosen != nil {
				t.Errorf("expected nil for no enabled models, got %q", chosen.Name)
			}
		})
	}
}

func TestRoundRobinCycles(t *testing.T) {
	s := New(NewMemoryStore())
	candidates := []models.AIModel{
		testModel("openai", 1, true),
		testModel("anthropic", 2, true),
		testModel("gemini", 3, true),
	}

	var got []string
	for i := 0; i < 6; i++ {
		chosen, err := s.SelectModel(context.Background(), models.StrategyRoundRobin, "", candidates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, chosen.Name)
	}

	want := []string{"openai", "anthropic", "gemini", "openai", "anthropic", "gemini"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: expected %q, got %q (sequence %v)", i, want[i], got[i], got)
		}
	}
}

func TestRoundRobinSkipsDisabled(t *testing.T) {
	s := New(NewMemoryStore())
	candidates := []models.AIModel{
		testModel("openai", 1, true),
		testModel("anthropic", 2, false),
		testModel("gemini", 3, true),
	}

	for i := 0; i < 4; i++ {
		chosen, err := s.SelectModel(context.Background(), models.StrategyRoundRobin, "", candidates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if chosen.Name == "anthropic" {
			t.Fatal("disabled model was selected")
		}
	}
}

func TestWeightedConvergesToWeightRatio(t *testing.T) {
	s := New(NewMemoryStore())
	candidates := []models.AIModel{
		testModel("heavy", 3, true),
		testModel("light", 1, true),
	}

	counts := map[string]int{}
	for i := 0; i < 400; i++ {
		chosen, err := s.SelectModel(context.Background(), models.StrategyWeighted, "session-1", candidates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		counts[chosen.Name]++
	}

	ratio := float64(counts["heavy"]) / float64(counts["light"])
	if ratio < 2.5 || ratio > 3.5 {
		t.Errorf("expected heavy:light ratio near 3:1, got %.2f (%v)", ratio, counts)
	}
}

func TestWeightedSessionsAreIndependent(t *testing.T) {
	s := New(NewMemoryStore())
	candidates := []models.AIModel{
		testModel("heavy", 3, true),
		testModel("light", 1, true),
	}

	// First pick in a fresh session always goes to the most under-served
	// model, which with zero usage is the heaviest
	for _, session := range []string{"a", "b", "c"} {
		chosen, err := s.SelectModel(context.Background(), models.StrategyWeighted, session, candidates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if chosen.Name != "heavy" {
			t.Errorf("session %s: expected first pick heavy, got %q", session, chosen.Name)
		}
	}
}

func TestRandomPicksEnabledModel(t *testing.T) {
	s := New(NewMemoryStore())
	candidates := []models.AIModel{
		testModel("openai", 1, true),
		testModel("gemini", 1, true),
	}

	for i := 0; i < 20; i++ {
		chosen, err := s.SelectModel(context.Background(), models.StrategyRandom, "", candidates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if chosen == nil {
			t.Fatal("expected a model")
		}
		if chosen.Name != "openai" && chosen.Name != "gemini" {
			t.Errorf("unexpected model %q", chosen.Name)
		}
	}
}

func TestPerformanceBasedPrefersFastReliableModel(t *testing.T) {
	s := New(NewMemoryStore())
	fast := testModel("fast", 1, true)
	slow := testModel("slow", 1, true)
	flaky := testModel("flaky", 1, true)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		s.UpdatePerformanceMetrics(ctx, fast.AIModelID, true, 2*time.Second)
		s.UpdatePerformanceMetrics(ctx, slow.AIModelID, true, 20*time.Second)
		s.UpdatePerformanceMetrics(ctx, flaky.AIModelID, i%2 == 0, 2*time.Second)
	}

	chosen, err := s.SelectModel(ctx, models.StrategyPerformance, "", []models.AIModel{slow, flaky, fast})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chosen.Name != "fast" {
		t.Errorf("expected fast model, got %q", chosen.Name)
	}
}

func TestPerformanceBasedNoHistoryFallsBackToFirst(t *testing.T) {
	s := New(NewMemoryStore())
	candidates := []models.AIModel{
		testModel("first", 1, true),
		testModel("second", 1, true),
	}

	chosen, err := s.SelectModel(context.Background(), models.StrategyPerformance, "", candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chosen.Name != "first" {
		t.Errorf("expected first enabled model on tie, got %q", chosen.Name)
	}
}

func TestUnknownStrategyDefaultsToRoundRobin(t *testing.T) {
	s := New(NewMemoryStore())
	candidates := []models.AIModel{
		testModel("openai", 1, true),
		testModel("gemini", 1, true),
	}

	first, err := s.SelectModel(context.Background(), "definitely-not-a-strategy", "", candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.SelectModel(context.Background(), "definitely-not-a-strategy", "", candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Name != "openai" || second.Name != "gemini" {
		t.Errorf("expected round-robin order openai,gemini; got %q,%q", first.Name, second.Name)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("expected value before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("expected value to expire")
	}
}

// services/visibility_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

type stubMentionRepo struct {
	mentions []models.BrandMention
}

func (s *stubMentionRepo) Create(ctx context.Context, mention *models.BrandMention) error {
	s.mentions = append(s.mentions, *mention)
	return nil
}

func (s *stubMentionRepo) CreateBatch(ctx context.Context, mentions []models.BrandMention) error {
	s.mentions = append(s.mentions, mentions...)
	return nil
}

func (s *stubMentionRepo) GetByBrandSince(ctx context.Context, brandID uuid.UUID, since time.Time) ([]models.BrandMention, error) {
	var result []models.BrandMention
	for _, m := range s.mentions {
		if m.BrandID == brandID && !m.AnalyzedAt.Before(since) {
			result = append(result, m)
		}
	}
	return result, nil
}

func (s *stubMentionRepo) CountAnalyzedPrompts(ctx context.Context, brandID uuid.UUID, since time.Time) (int, error) {
	seen := map[uuid.UUID]bool{}
	for _, m := range s.mentions {
		if m.BrandID == brandID && !m.AnalyzedAt.Before(since) {
			seen[m.PromptID] = true
		}
	}
	return len(seen), nil
}

type stubStatRepo struct {
	stats []models.BrandCompetitiveStat
}

func (s *stubStatRepo) Create(ctx context.Context, stat *models.BrandCompetitiveStat) error {
	s.stats = append(s.stats, *stat)
	return nil
}

func (s *stubStatRepo) GetByBrandSince(ctx context.Context, brandID uuid.UUID, since time.Time) ([]models.BrandCompetitiveStat, error) {
	return s.stats, nil
}

func mentionRow(brandID, promptID uuid.UUID, entityType, name string, competitorID *uuid.UUID, count, position, sentiment int, at time.Time) models.BrandMention {
	return models.BrandMention{
		BrandMentionID: uuid.New(),
		BrandID:        brandID,
		PromptID:       promptID,
		CompetitorID:   competitorID,
		EntityType:     entityType,
		EntityName:     name,
		MentionCount:   count,
		Position:       position,
		Sentiment:      &sentiment,
		AnalyzedAt:     at,
	}
}

func TestCalculateVisibilityPresenceFrequency(t *testing.T) {
	brandID := uuid.New()
	competitorID := uuid.New()
	now := time.Now()
	p1, p2, p3, p4 := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	repo := &stubMentionRepo{}
	// Brand appears in all 4 prompts; 50 mentions in p1 must not inflate
	// visibility beyond presence
	repo.mentions = append(repo.mentions,
		mentionRow(brandID, p1, models.EntityTypeBrand, "Acme", nil, 50, 10, 100, now),
		mentionRow(brandID, p2, models.EntityTypeBrand, "Acme", nil, 1, 200, 50, now),
		mentionRow(brandID, p3, models.EntityTypeBrand, "Acme", nil, 2, 30, 50, now),
		mentionRow(brandID, p4, models.EntityTypeBrand, "Acme", nil, 1, 400, 0, now),
		// Competitor appears in 1 of 4 prompts
		mentionRow(brandID, p2, models.EntityTypeCompetitor, "Beta", &competitorID, 3, 150, 50, now),
	)

	s := NewVisibilityService(&RepositoryManager{MentionRepo: repo})
	report, err := s.CalculateVisibility(context.Background(), brandID, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalPrompts != 4 {
		t.Fatalf("expected 4 distinct prompts, got %d", report.TotalPrompts)
	}
	if len(report.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(report.Entities))
	}

	// Sorted by visibility descending
	brandEntity := report.Entities[0]
	if brandEntity.EntityName != "Acme" || brandEntity.Visibility != 100.0 {
		t.Errorf("expected Acme at 100%% visibility, got %s at %.2f", brandEntity.EntityName, brandEntity.Visibility)
	}
	if brandEntity.TotalMentions != 54 {
		t.Errorf("expected 54 raw mentions, got %d", brandEntity.TotalMentions)
	}

	competitorEntity := report.Entities[1]
	if competitorEntity.EntityName != "Beta" || competitorEntity.Visibility != 25.0 {
		t.Errorf("expected Beta at 25%% visibility, got %s at %.2f", competitorEntity.EntityName, competitorEntity.Visibility)
	}

	for _, e := range report.Entities {
		if e.Visibility < 0 || e.Visibility > 100 {
			t.Errorf("visibility out of bounds for %s: %.2f", e.EntityName, e.Visibility)
		}
	}
}

func TestCalculateVisibilityEmptyWindow(t *testing.T) {
	s := NewVisibilityService(&RepositoryManager{MentionRepo: &stubMentionRepo{}})

	report, err := s.CalculateVisibility(context.Background(), uuid.New(), time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalPrompts != 0 || len(report.Entities) != 0 {
		t.Errorf("expected empty report, got %d prompts, %d entities", report.TotalPrompts, len(report.Entities))
	}
}

func TestCalculateVisibilityAveragesPositionPerEvent(t *testing.T) {
	brandID := uuid.New()
	now := time.Now()
	p1 := uuid.New()

	// Same prompt analyzed twice in the window: two events, one prompt
	mentionRepo := &stubMentionRepo{mentions: []models.BrandMention{
		mentionRow(brandID, p1, models.EntityTypeBrand, "Acme", nil, 1, 1000, 100, now.Add(-2*time.Hour)),
		mentionRow(brandID, p1, models.EntityTypeBrand, "Acme", nil, 1, 3000, 100, now.Add(-time.Hour)),
	}}
	repos := &RepositoryManager{MentionRepo: mentionRepo}
	s := NewVisibilityService(repos)

	report, err := s.CalculateVisibility(context.Background(), brandID, now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Entities) != 1 {
		t.Fatalf("entities = %d, want 1", len(report.Entities))
	}
	entity := report.Entities[0]
	if entity.PromptsMentioned != 1 {
		t.Errorf("prompts mentioned = %d, want 1", entity.PromptsMentioned)
	}
	if entity.AvgPosition != 2000 {
		t.Errorf("avg position = %.2f, want 2000 (mean over both passes)", entity.AvgPosition)
	}
}

func TestUpdateCompetitiveStatsAppendsSnapshots(t *testing.T) {
	brandID := uuid.New()
	now := time.Now()
	p1, p2 := uuid.New(), uuid.New()

	mentionRepo := &stubMentionRepo{mentions: []models.BrandMention{
		mentionRow(brandID, p1, models.EntityTypeBrand, "Acme", nil, 1, 5000, 100, now),
		mentionRow(brandID, p2, models.EntityTypeBrand, "Acme", nil, 1, 3000, 100, now),
	}}
	statRepo := &stubStatRepo{}
	repos := &RepositoryManager{MentionRepo: mentionRepo, CompetitiveStatRepo: statRepo}

	s := NewVisibilityService(repos)
	inserted, err := s.UpdateCompetitiveStats(context.Background(), brandID, "session-1", 24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 1 || len(statRepo.stats) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(statRepo.stats))
	}

	stat := statRepo.stats[0]
	if stat.Visibility != 100.0 {
		t.Errorf("expected visibility 100, got %.2f", stat.Visibility)
	}
	// Raw avg position 4000 rescales to 40 and clamps to the 1.0-10.0 scale
	if stat.Position != 10.0 {
		t.Errorf("expected position clamped to 10.0, got %.2f", stat.Position)
	}
	if stat.Sentiment < 0 || stat.Sentiment > 100 {
		t.Errorf("sentiment out of bounds: %.2f", stat.Sentiment)
	}

	// Second run appends, never overwrites
	if _, err := s.UpdateCompetitiveStats(context.Background(), brandID, "session-2", 24*time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statRepo.stats) != 2 {
		t.Errorf("expected 2 snapshots after second run, got %d", len(statRepo.stats))
	}

	// Re-running an already-recorded session is a no-op
	inserted, err = s.UpdateCompetitiveStats(context.Background(), brandID, "session-1", 24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 0 || len(statRepo.stats) != 2 {
		t.Errorf("expected replayed session to insert nothing, got inserted=%d total=%d", inserted, len(statRepo.stats))
	}
}

func TestStatPositionClamping(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{raw: 0, want: 1.0},
		{raw: 50, want: 1.0},
		{raw: 250, want: 2.5},
		{raw: 1000, want: 10.0},
		{raw: 5000, want: 10.0},
	}
	for _, tt := range tests {
		if got := statPosition(tt.raw); got != tt.want {
			t.Errorf("statPosition(%.0f): expected %.2f, got %.2f", tt.raw, tt.want, got)
		}
	}
}

// services/visibility_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

type visibilityService struct {
	repos *RepositoryManager
}

// NewVisibilityService creates the aggregator that turns mention events into
// presence-frequency visibility
func NewVisibilityService(repos *RepositoryManager) VisibilityService {
	return &visibilityService{repos: repos}
}

type entityKey struct {
	entityType   string
	name         string
	domain       string
	competitorID string
}

type entityAccumulator struct {
	entityType    string
	name          string
	domain        string
	competitorID  *uuid.UUID
	prompts       map[uuid.UUID]bool
	totalMentions int
	events        int
	positionSum   float64
	sentimentSum  float64
	sentimentN    int
}

// CalculateVisibility aggregates mention events over [windowStart, windowEnd]
// into per-entity presence frequency. An empty window is an expected "no data
// yet" state, not an error.
func (s *visibilityService) CalculateVisibility(ctx context.Context, brandID uuid.UUID, windowStart, windowEnd time.Time) (*models.VisibilityReport, error) {
	mentions, err := s.repos.MentionRepo.GetByBrandSince(ctx, brandID, windowStart)
	if err != nil {
		return nil, err
	}

	report := &models.VisibilityReport{
		BrandID:     brandID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}

	// Denominator: distinct prompts with at least one mention event in the
	// window, regardless of entity
	promptsSeen := map[uuid.UUID]bool{}
	byEntity := map[entityKey]*entityAccumulator{}

	for i := range mentions {
		m := &mentions[i]
		if m.AnalyzedAt.After(windowEnd) {
			continue
		}
		promptsSeen[m.PromptID] = true

		key := entityKey{entityType: m.EntityType, name: m.EntityName, domain: m.EntityDomain}
		if m.CompetitorID != nil {
			key.competitorID = m.CompetitorID.String()
		}
		acc, ok := byEntity[key]
		if !ok {
			acc = &entityAccumulator{
				entityType:   m.EntityType,
				name:         m.EntityName,
				domain:       m.EntityDomain,
				competitorID: m.CompetitorID,
				prompts:      map[uuid.UUID]bool{},
			}
			byEntity[key] = acc
		}
		acc.prompts[m.PromptID] = true
		acc.totalMentions += m.MentionCount
		acc.events++
		acc.positionSum += float64(m.Position)
		if m.Sentiment != nil {
			acc.sentimentSum += float64(*m.Sentiment)
			acc.sentimentN++
		}
	}

	report.TotalPrompts = len(promptsSeen)
	if report.TotalPrompts == 0 {
		return report, nil
	}

	// Position averages over events, not prompts: a prompt re-analyzed
	// within the window contributes one event per pass
	for _, acc := range byEntity {
		entity := models.EntityVisibility{
			EntityType:       acc.entityType,
			EntityName:       acc.name,
			EntityDomain:     acc.domain,
			CompetitorID:     acc.competitorID,
			PromptsMentioned: len(acc.prompts),
			TotalMentions:    acc.totalMentions,
			Visibility:       round2(float64(len(acc.prompts)) / float64(report.TotalPrompts) * 100),
			AvgPosition:      round2(acc.positionSum / float64(acc.events)),
		}
		if acc.sentimentN > 0 {
			entity.AvgSentiment = round2(acc.sentimentSum / float64(acc.sentimentN))
		}
		report.Entities = append(report.Entities, entity)
	}

	sort.Slice(report.Entities, func(i, j int) bool {
		if report.Entities[i].Visibility != report.Entities[j].Visibility {
			return report.Entities[i].Visibility > report.Entities[j].Visibility
		}
		return report.Entities[i].EntityName < report.Entities[j].EntityName
	})

	return report, nil
}

// UpdateCompetitiveStats recomputes visibility over the trailing window and
// appends one snapshot row per entity. Stats are never updated in place: the
// table is the time series behind trend charts.
func (s *visibilityService) UpdateCompetitiveStats(ctx context.Context, brandID uuid.UUID, sessionID string, window time.Duration) (int, error) {
	now := time.Now()
	report, err := s.CalculateVisibility(ctx, brandID, now.Add(-window), now)
	if err != nil {
		return 0, err
	}
	if report.TotalPrompts == 0 {
		fmt.Printf("[VisibilityService] No mention data for brand %s in window - skipping snapshot\n", brandID)
		return 0, nil
	}

	// A retried job step must not double-insert the same session's snapshots
	if sessionID != "" {
		prior, err := s.repos.CompetitiveStatRepo.GetByBrandSince(ctx, brandID, now.Add(-window))
		if err != nil {
			return 0, err
		}
		for _, p := range prior {
			if p.SessionID == sessionID {
				fmt.Printf("[VisibilityService] Snapshots for session %s already exist for brand %s - skipping\n", sessionID, brandID)
				return 0, nil
			}
		}
	}

	inserted := 0
	for _, entity := range report.Entities {
		stat := &models.BrandCompetitiveStat{
			BrandID:      brandID,
			CompetitorID: entity.CompetitorID,
			EntityType:   entity.EntityType,
			EntityName:   entity.EntityName,
			Visibility:   clamp(entity.Visibility, 0, 100),
			Sentiment:    clamp(entity.AvgSentiment, 0, 100),
			Position:     statPosition(entity.AvgPosition),
			SessionID:    sessionID,
			RawData: models.JSONMap{
				"prompts_mentioned": entity.PromptsMentioned,
				"total_prompts":     report.TotalPrompts,
				"total_mentions":    entity.TotalMentions,
				"avg_position_raw":  entity.AvgPosition,
			},
			AnalyzedAt: now,
		}
		if err := s.repos.CompetitiveStatRepo.Create(ctx, stat); err != nil {
			return inserted, err
		}
		inserted++
	}

	fmt.Printf("[VisibilityService] ✅ Inserted %d competitive stat snapshots for brand %s\n", inserted, brandID)
	return inserted, nil
}

// statPosition rescales the raw character-offset average into the stored
// 1.0-10.0 scale
func statPosition(avgPositionRaw float64) float64 {
	return clamp(avgPositionRaw/100.0, 1.0, 10.0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// internal/models/models.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JSONMap is a postgres jsonb column holding an opaque object
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("JSONMap: cannot scan %T", src)
	}
	return json.Unmarshal(b, m)
}

// Model selection strategies
const (
	StrategyRoundRobin  = "round_robin"
	StrategyWeighted    = "weighted"
	StrategyRandom      = "random"
	StrategyPerformance = "performance_based"
)

// AIModel is an admin-managed LLM provider configuration.
// Name is the provider key ("openai", "anthropic", "gemini", ...); APIConfig
// carries api_key, model id, temperature, max_tokens, base_url and the
// location/language knobs used by search-style providers.
type AIModel struct {
	AIModelID   uuid.UUID `db:"ai_model_id" json:"ai_model_id"`
	Name        string    `db:"name" json:"name"`
	DisplayName string    `db:"display_name" json:"display_name"`
	IsEnabled   bool      `db:"is_enabled" json:"is_enabled"`
	Order       int       `db:"sort_order" json:"order"`
	APIConfig   JSONMap   `db:"api_config" json:"api_config"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ConfigString reads a string field from APIConfig
func (m *AIModel) ConfigString(key string) string {
	if m.APIConfig == nil {
		return ""
	}
	if v, ok := m.APIConfig[key].(string); ok {
		return v
	}
	return ""
}

// ConfigFloat reads a numeric field from APIConfig
func (m *AIModel) ConfigFloat(key string, def float64) float64 {
	if m.APIConfig == nil {
		return def
	}
	switch v := m.APIConfig[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

type Brand struct {
	BrandID     uuid.UUID `db:"brand_id" json:"brand_id"`
	Name        string    `db:"name" json:"name"`
	Website     string    `db:"website" json:"website"`
	Description *string   `db:"description" json:"description,omitempty"`
	Country     *string   `db:"country" json:"country,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Competitor statuses and sources
const (
	CompetitorStatusSuggested = "suggested"
	CompetitorStatusAccepted  = "accepted"
	CompetitorStatusRejected  = "rejected"

	CompetitorSourceAI     = "ai"
	CompetitorSourceManual = "manual"
)

type Competitor struct {
	CompetitorID uuid.UUID `db:"competitor_id" json:"competitor_id"`
	BrandID      uuid.UUID `db:"brand_id" json:"brand_id"`
	Name         string    `db:"name" json:"name"`
	Domain       string    `db:"domain" json:"domain"`
	Aliases      JSONMap   `db:"aliases" json:"aliases,omitempty"`
	Status       string    `db:"status" json:"status"`
	Source       string    `db:"source" json:"source"`
	MentionCount int       `db:"mention_count" json:"mention_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AliasNames returns the tracked alias names for mention scanning
func (c *Competitor) AliasNames() []string {
	if c.Aliases == nil {
		return nil
	}
	raw, ok := c.Aliases["names"].([]interface{})
	if !ok {
		return nil
	}
	var names []string
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			names = append(names, s)
		}
	}
	return names
}

// Post is a piece of brand content (article, landing page) whose AI
// citability is tracked through post-level prompts and citation checks
type Post struct {
	PostID    uuid.UUID `db:"post_id" json:"post_id"`
	BrandID   uuid.UUID `db:"brand_id" json:"brand_id"`
	Title     string    `db:"title" json:"title"`
	URL       string    `db:"url" json:"url"`
	Content   *string   `db:"content" json:"content,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Prompt statuses and sources
const (
	PromptStatusSuggested = "suggested"
	PromptStatusActive    = "active"
	PromptStatusInactive  = "inactive"

	PromptSourceAI       = "ai_generated"
	PromptSourceUser     = "user_added"
	PromptSourceFallback = "fallback"
)

// Prompt is a candidate end-user question tracked for a brand (or a post)
type Prompt struct {
	PromptID   uuid.UUID  `db:"prompt_id" json:"prompt_id"`
	BrandID    uuid.UUID  `db:"brand_id" json:"brand_id"`
	PostID     *uuid.UUID `db:"post_id" json:"post_id,omitempty"`
	Text       string     `db:"text" json:"text"`
	Source     string     `db:"source" json:"source"`
	AIProvider string     `db:"ai_provider" json:"ai_provider"`
	Order      int        `db:"sort_order" json:"order"`
	Status     string     `db:"status" json:"status"`
	Visibility *float64   `db:"visibility" json:"visibility,omitempty"`
	Sentiment  *int       `db:"sentiment" json:"sentiment,omitempty"`
	Position   *float64   `db:"position" json:"position,omitempty"`
	Volume     *int       `db:"volume" json:"volume,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// BrandPrompt holds the latest analysis result for a prompt (1:1, overwritten
// on re-analysis)
type BrandPrompt struct {
	BrandPromptID       uuid.UUID  `db:"brand_prompt_id" json:"brand_prompt_id"`
	BrandID             uuid.UUID  `db:"brand_id" json:"brand_id"`
	PromptID            uuid.UUID  `db:"prompt_id" json:"prompt_id"`
	AIResponse          *string    `db:"ai_response" json:"ai_response,omitempty"`
	Resources           JSONMap    `db:"resources" json:"resources,omitempty"`
	Sentiment           *int       `db:"sentiment" json:"sentiment,omitempty"`
	Position            *int       `db:"position" json:"position,omitempty"`
	CompetitorMentions  JSONMap    `db:"competitor_mentions" json:"competitor_mentions,omitempty"`
	AIProvider          *string    `db:"ai_provider" json:"ai_provider,omitempty"`
	InputTokens         *int       `db:"input_tokens" json:"input_tokens,omitempty"`
	OutputTokens        *int       `db:"output_tokens" json:"output_tokens,omitempty"`
	TotalCost           *float64   `db:"total_cost" json:"total_cost,omitempty"`
	AnalysisCompletedAt *time.Time `db:"analysis_completed_at" json:"analysis_completed_at,omitempty"`
	AnalysisFailedAt    *time.Time `db:"analysis_failed_at" json:"analysis_failed_at,omitempty"`
	AnalysisError       *string    `db:"analysis_error" json:"analysis_error,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// Resource types after normalization
const (
	ResourceTypeCompetitor  = "competitor"
	ResourceTypeNews        = "news"
	ResourceTypeBlog        = "blog"
	ResourceTypeResearch    = "research"
	ResourceTypeSocial      = "social"
	ResourceTypeReddit      = "reddit"
	ResourceTypeYouTube     = "youtube"
	ResourceTypeMarketplace = "marketplace"
	ResourceTypeReviews     = "reviews"
	ResourceTypeOther       = "other"
)

// BrandPromptResource is one extracted citation URL for an analyzed prompt.
// Rows for a prompt are hard-deleted and reinserted on every analysis pass.
type BrandPromptResource struct {
	ResourceID      uuid.UUID `db:"resource_id" json:"resource_id"`
	BrandPromptID   uuid.UUID `db:"brand_prompt_id" json:"brand_prompt_id"`
	URL             string    `db:"url" json:"url"`
	Type            string    `db:"type" json:"type"`
	Domain          string    `db:"domain" json:"domain"`
	Title           string    `db:"title" json:"title"`
	Description     string    `db:"description" json:"description"`
	IsCompetitorURL bool      `db:"is_competitor_url" json:"is_competitor_url"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Mention entity types
const (
	EntityTypeBrand      = "brand"
	EntityTypeCompetitor = "competitor"
)

// BrandMention is one detected occurrence of an entity within a single AI
// response. Append-only; source of truth for visibility aggregation.
type BrandMention struct {
	BrandMentionID uuid.UUID  `db:"brand_mention_id" json:"brand_mention_id"`
	BrandID        uuid.UUID  `db:"brand_id" json:"brand_id"`
	PromptID       uuid.UUID  `db:"prompt_id" json:"prompt_id"`
	CompetitorID   *uuid.UUID `db:"competitor_id" json:"competitor_id,omitempty"`
	EntityType     string     `db:"entity_type" json:"entity_type"`
	EntityName     string     `db:"entity_name" json:"entity_name"`
	EntityDomain   string     `db:"entity_domain" json:"entity_domain"`
	MentionCount   int        `db:"mention_count" json:"mention_count"`
	Position       int        `db:"position" json:"position"`
	Context        string     `db:"context" json:"context"`
	Sentiment      *int       `db:"sentiment" json:"sentiment,omitempty"`
	AIModel        *string    `db:"ai_model" json:"ai_model,omitempty"`
	SessionID      string     `db:"session_id" json:"session_id"`
	AnalyzedAt     time.Time  `db:"analyzed_at" json:"analyzed_at"`
}

// BrandCompetitiveStat is an append-only per-entity visibility snapshot.
// Position is stored on a 1.0-10.0 scale; visibility/sentiment on 0-100.
type BrandCompetitiveStat struct {
	StatID       uuid.UUID  `db:"stat_id" json:"stat_id"`
	BrandID      uuid.UUID  `db:"brand_id" json:"brand_id"`
	CompetitorID *uuid.UUID `db:"competitor_id" json:"competitor_id,omitempty"`
	EntityType   string     `db:"entity_type" json:"entity_type"`
	EntityName   string     `db:"entity_name" json:"entity_name"`
	Visibility   float64    `db:"visibility" json:"visibility"`
	Sentiment    float64    `db:"sentiment" json:"sentiment"`
	Position     float64    `db:"position" json:"position"`
	RawData      JSONMap    `db:"raw_data" json:"raw_data,omitempty"`
	SessionID    string     `db:"session_id" json:"session_id"`
	AnalyzedAt   time.Time  `db:"analyzed_at" json:"analyzed_at"`
}

// PostCitation is the per (post, ai_provider) citation-check result, upserted
// so only the current result per pair survives.
type PostCitation struct {
	PostCitationID uuid.UUID `db:"post_citation_id" json:"post_citation_id"`
	PostID         uuid.UUID `db:"post_id" json:"post_id"`
	AIProvider     string    `db:"ai_provider" json:"ai_provider"`
	IsMentioned    bool      `db:"is_mentioned" json:"is_mentioned"`
	Position       *int      `db:"position" json:"position,omitempty"`
	CitationText   *string   `db:"citation_text" json:"citation_text,omitempty"`
	Confidence     *float64  `db:"confidence" json:"confidence,omitempty"`
	Metadata       JSONMap   `db:"metadata" json:"metadata,omitempty"`
	CheckedAt      time.Time `db:"checked_at" json:"checked_at"`
}

// MentionEvent is an in-memory mention occurrence before persistence
type MentionEvent struct {
	EntityType   string     `json:"entity_type"`
	EntityName   string     `json:"entity_name"`
	EntityDomain string     `json:"entity_domain"`
	CompetitorID *uuid.UUID `json:"competitor_id,omitempty"`
	MentionCount int        `json:"mention_count"`
	Position     int        `json:"position"`
	Context      string     `json:"context"`
}

// EntityVisibility is one entity's aggregated stats over a time window
type EntityVisibility struct {
	EntityType       string     `json:"entity_type"`
	EntityName       string     `json:"entity_name"`
	EntityDomain     string     `json:"entity_domain"`
	CompetitorID     *uuid.UUID `json:"competitor_id,omitempty"`
	PromptsMentioned int        `json:"prompts_mentioned"`
	TotalMentions    int        `json:"total_mentions"`
	Visibility       float64    `json:"visibility"`
	AvgPosition      float64    `json:"avg_position"`
	AvgSentiment     float64    `json:"avg_sentiment"`
}

// VisibilityReport is the aggregation result for a brand over a window
type VisibilityReport struct {
	BrandID      uuid.UUID          `json:"brand_id"`
	WindowStart  time.Time          `json:"window_start"`
	WindowEnd    time.Time          `json:"window_end"`
	TotalPrompts int                `json:"total_prompts"`
	Entities     []EntityVisibility `json:"entities"`
}

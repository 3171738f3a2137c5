// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/inngest/inngestgo"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/brandlens/brandlens-workflows/internal/config"
	"github.com/brandlens/brandlens-workflows/internal/providers"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/brandlens/brandlens-workflows/internal/selector"
	"github.com/brandlens/brandlens-workflows/services"
	"github.com/brandlens/brandlens-workflows/workflows"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			log.Printf("Note: No .env or dev.env file loaded: %v", err)
		} else {
			log.Printf("Loaded dev.env file for local development")
		}
	} else {
		log.Printf("Loaded .env file")
	}

	cfg := config.Load()

	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Port: %s", cfg.Port)
	log.Printf("Database Host: %s", cfg.Database.Host)
	log.Printf("Database Name: %s", cfg.Database.Name)

	if cfg.OpenAIAPIKey == "" {
		log.Printf("WARNING: OpenAI API key not loaded!")
	} else {
		log.Printf("OpenAI API key loaded (length: %d)", len(cfg.OpenAIAPIKey))
	}

	ctx := context.Background()
	dbClient, err := repositories.NewClient(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close()
	log.Printf("Successfully connected to database")

	repoManager := services.NewRepositoryManager(dbClient)
	log.Printf("Repository manager initialized")

	if cfg.Environment == "development" || cfg.Environment == "" {
		os.Unsetenv("INNGEST_SIGNING_KEY")
		cfg.InngestSigningKey = ""
		log.Printf("Running in development mode - signing key verification disabled")
	}

	// Distribution state lives in postgres so selections survive across
	// one-shot workflow steps
	modelSelector := selector.New(repoManager.StateRepo)
	registry := providers.NewRegistry()
	log.Printf("Provider registry initialized with %d providers", len(registry.Providers()))

	costService := services.NewCostService()
	selectorService := services.NewModelSelectorService(repoManager, modelSelector, registry, costService)
	promptGeneratorService := services.NewPromptGeneratorService(repoManager, selectorService)
	analysisService := services.NewAnalysisService(repoManager, selectorService)
	visibilityService := services.NewVisibilityService(repoManager)
	citationService := services.NewCitationCheckService(repoManager, selectorService)
	competitorService := services.NewCompetitorService(cfg, repoManager)
	notificationService := services.NewNotificationService(cfg.SMTP)
	healthService := services.NewHealthCheckService(repoManager, selectorService, notificationService)
	log.Printf("All services initialized")

	client, err := inngestgo.NewClient(
		inngestgo.ClientOpts{
			AppID:    "brandlens-workflows",
			EventKey: inngestgo.StrPtr(cfg.InngestEventKey),
			Env:      inngestgo.StrPtr(cfg.Environment),
		},
	)
	if err != nil {
		log.Fatalf("Failed to create Inngest client: %v", err)
	}

	// Initialize and register workflows
	log.Printf("Initializing and registering workflows...")

	promptProcessor := workflows.NewPromptProcessor(promptGeneratorService)
	promptProcessor.SetClient(client)
	promptProcessor.GenerateBrandPrompts()

	analysisProcessor := workflows.NewAnalysisProcessor(analysisService)
	analysisProcessor.SetClient(client)
	analysisProcessor.AnalyzeBrandPrompt()

	citationProcessor := workflows.NewCitationProcessor(citationService)
	citationProcessor.SetClient(client)
	citationProcessor.CheckPostCitations()

	statsProcessor := workflows.NewStatsProcessor(visibilityService, repoManager.BrandRepo)
	statsProcessor.SetClient(client)
	statsProcessor.UpdateBrandStats()
	statsProcessor.DailyStatsSnapshot()

	competitorProcessor := workflows.NewCompetitorProcessor(competitorService)
	competitorProcessor.SetClient(client)
	competitorProcessor.SuggestBrandCompetitors()

	healthProcessor := workflows.NewHealthProcessor(healthService)
	healthProcessor.SetClient(client)
	healthProcessor.HealthCheckModels()

	log.Printf("All processors initialized and functions registered")

	h := client.Serve()
	mux := http.NewServeMux()
	mux.Handle("/api/inngest", h)

	// Root endpoint for ALB health check
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"service":"brandlens-workflows","status":"running"}`))
	})

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	mux.HandleFunc("/test/trigger-prompts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		brandID := r.URL.Query().Get("brand_id")
		if brandID == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"brand_id query parameter required"}`))
			return
		}
		data := map[string]interface{}{"brand_id": brandID, "replace_existing": true, "triggered_by": "manual_test"}
		if postID := r.URL.Query().Get("post_id"); postID != "" {
			data["post_id"] = postID
		}
		evt := inngestgo.Event{
			Name: "brand.prompts.generate",
			Data: data,
		}
		result, err := client.Send(r.Context(), evt)
		if err != nil {
			log.Printf("Failed to send test event: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf(`{"error":"Failed to send event: %v"}`, err)))
			return
		}
		log.Printf("Test event sent successfully: %+v", result)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(fmt.Sprintf(`{"status":"success","message":"Prompt generation triggered for brand %s","event_ids":["%s"]}`, brandID, result)))
	})

	port := cfg.Port
	log.Printf("Starting BrandLens Workflows service on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	webAdapter "github.com/Traumerei-sf/tokumei-AI/internal/adapters/web"
	"github.com/Traumerei-sf/tokumei-AI/internal/ai"
	"github.com/Traumerei-sf/tokumei-AI/internal/app"
	"github.com/Traumerei-sf/tokumei-AI/internal/logger"
	"github.com/Traumerei-sf/tokumei-AI/internal/report"
	"github.com/Traumerei-sf/tokumei-AI/internal/store"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	ctx := context.Background()

	assembler, err := report.NewAssembler()
	if err != nil {
		log.Fatal().Err(err).Msg("report templates")
	}

	var runs *store.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := store.NewPool(ctx, dbURL)
		if err != nil {
			log.Fatal().Err(err).Msg("database")
		}
		defer pool.Close()
		runs = store.New(pool)
	} else {
		log.Info().Msg("DATABASE_URL not set, runs will not be archived")
	}

	var agent ai.ProspectorService
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	} else {
		log.Warn().Msg("OPENAI_API_KEY is not set, prospect generation disabled")
	}

	var promptSource ai.PromptSource = ai.StaticPromptSource(ai.DefaultBasePrompt)
	if sheetID := os.Getenv("PROMPT_SPREADSHEET_ID"); sheetID != "" {
		worksheet := os.Getenv("PROMPT_WORKSHEET")
		if worksheet == "" {
			worksheet = "AIプロンプト"
		}
		promptSource = ai.NewSpreadsheetPromptSource(sheetID, worksheet)
	}

	svc := app.NewAppService(assembler, agent, promptSource, runs, log)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, log)

	log.Info().Str("port", port).Msg("server starting")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/Traumerei-sf/tokumei-AI/internal/ai"
	"github.com/Traumerei-sf/tokumei-AI/internal/app"
	"github.com/Traumerei-sf/tokumei-AI/internal/logger"
	"github.com/Traumerei-sf/tokumei-AI/internal/report"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	bsPath := flag.String("bs", "", "balance sheet file (CSV or Excel), optional")
	outPath := flag.String("o", "report.html", "output path for the rendered report")
	prospects := flag.Bool("prospects", false, "also generate the sales prospect list (requires OPENAI_API_KEY)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: cli [-bs balance_sheet.csv] [-o report.html] [-prospects] <journal.csv>")
		os.Exit(2)
	}

	journal, err := readFile(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("read journal")
	}
	var balanceSheet *app.UploadedFile
	if *bsPath != "" {
		balanceSheet, err = readFile(*bsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("read balance sheet")
		}
	}

	assembler, err := report.NewAssembler()
	if err != nil {
		log.Fatal().Err(err).Msg("report templates")
	}

	var agent ai.ProspectorService
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	}
	promptSource := ai.StaticPromptSource(ai.DefaultBasePrompt)

	svc := app.NewAppService(assembler, agent, promptSource, nil, log)
	ctx := context.Background()

	result, err := svc.Analyze(ctx, journal, balanceSheet)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	for _, c := range result.Checks {
		fmt.Printf("[%s] %s\n", c.Severity, c.Message)
	}
	if result.DocumentHTML == nil {
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(result.PreviewMarkdown)

	if err := os.WriteFile(*outPath, result.DocumentHTML, 0o644); err != nil {
		log.Fatal().Err(err).Msg("write report")
	}
	fmt.Printf("\nレポートを書き出しました: %s\n", *outPath)

	if *prospects {
		res, err := svc.BuildProspectList(ctx, journal)
		if err != nil {
			log.Fatal().Err(err).Msg("prospect generation failed")
		}
		csvPath := "business_list.csv"
		if err := os.WriteFile(csvPath, res.CSV, 0o644); err != nil {
			log.Fatal().Err(err).Msg("write prospect csv")
		}
		fmt.Printf("営業先リストを書き出しました: %s（候補 %d 件）\n", csvPath, len(res.List.BusinessList))
	}
}

func readFile(path string) (*app.UploadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &app.UploadedFile{Name: filepath.Base(path), Data: data}, nil
}

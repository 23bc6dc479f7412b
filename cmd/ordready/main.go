package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/mhazlan/ordready/internal/api"
	"github.com/mhazlan/ordready/internal/demo"
	"github.com/mhazlan/ordready/internal/forecast"
	"github.com/mhazlan/ordready/internal/predict"
	"github.com/mhazlan/ordready/internal/store"
)

var cli struct {
	DB        string `help:"Path to SQLite database." default:"data/ordready.db" env:"ORDREADY_DB"`
	Port      string `help:"HTTP server port." default:"8080" env:"ORDREADY_PORT"`
	OpenAIKey string `help:"OpenAI API key for candidate predictions." env:"OPENAI_API_KEY"`
	NoPredict bool   `help:"Disable the external prediction service (fallback only)."`
	DemoSeed  int64  `help:"Seed for synthetic demo inputs." default:"42" env:"ORDREADY_DEMO_SEED"`
	SeedDemo  bool   `help:"Generate and store one demo forecast at startup."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("ordready"),
		kong.Description("Ordnance readiness forecasting service."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	engine := forecast.NewEngine()

	var predictor api.Predictor
	if !cli.NoPredict {
		client, err := predict.NewClient(cli.OpenAIKey)
		if err != nil {
			log.Printf("prediction disabled: %v", err)
		} else {
			predictor = client
		}
	}

	if cli.SeedDemo {
		gen := demo.NewGenerator(cli.DemoSeed, time.Now())
		input := gen.Input()
		result := engine.Generate(input, gen.Candidate(input))
		if err := st.SaveForecast(input, result); err != nil {
			log.Fatalf("seed demo forecast: %v", err)
		}
		log.Printf("seeded demo forecast %s (%s)", result.ForecastID, result.Metadata.GeneratedAs)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := api.NewServer(st, engine, predictor, cli.DemoSeed, cli.Port)
	log.Printf("starting server on :%s", cli.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}

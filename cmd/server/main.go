package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/covenantlabs/guidegraph/internal/config"
	"github.com/covenantlabs/guidegraph/internal/core"
	"github.com/covenantlabs/guidegraph/internal/core/decision"
	"github.com/covenantlabs/guidegraph/internal/graph"
	"github.com/covenantlabs/guidegraph/internal/oracle"
	"github.com/covenantlabs/guidegraph/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfg := loadConfig()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var source decision.FragmentSource
	client, err := oracle.NewClient(ctx, cfg.Oracle)
	if err != nil {
		log.Fatalf("Failed to build oracle client: %v", err)
	}
	if client != nil {
		source = oracle.New(client, cfg.Oracle.Provider, cfg.Prompts.Decision,
			time.Duration(cfg.Oracle.TimeoutSeconds)*time.Second)
		log.Printf("Oracle provider: %s (%s)", cfg.Oracle.Provider, cfg.Oracle.Model)
	} else {
		log.Println("No oracle provider configured, using pattern extraction only")
	}

	var assembler *graph.Assembler
	if cfg.Neo4j.URI != "" {
		driver, err := graph.NewNeo4jDriver(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
		if err != nil {
			log.Fatalf("Failed to connect to Neo4j: %v", err)
		}
		defer driver.Close(ctx)
		if err := driver.BuildIndices(ctx); err != nil {
			log.Printf("Warning: failed to build graph indices: %v", err)
		}
		assembler = graph.NewAssembler(driver, logger)
	} else {
		log.Println("No Neo4j URI configured, graph assembly disabled")
	}

	pipeline := core.NewPipeline(cfg, source, logger)
	srv := server.New(pipeline, assembler, logger)
	r := srv.SetupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() *config.Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.toml"
	}
	cfg, err := config.Load(path)
	switch {
	case err == nil:
		log.Printf("Loaded configuration from %s", path)
	case errors.Is(err, os.ErrNotExist):
		log.Printf("No config file at %s, using defaults", path)
		cfg = config.Default()
	default:
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyEnv()
	return cfg
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/embedding"
	"docchat/internal/ingest"
	"docchat/internal/llmservice"
	"docchat/internal/rag"
	"docchat/internal/server"
	"docchat/internal/tui"
	"docchat/internal/vectorstore"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	serve := flag.Bool("serve", false, "Start the HTTP API server")
	dashboard := flag.Bool("dashboard", false, "Start the interactive chat dashboard")
	filePath := flag.String("file", "", "Path to a document file to ingest")
	query := flag.String("query", "", "Question to answer against the ingested documents")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	app, err := buildApp(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error wiring application")
	}

	switch {
	case *serve:
		runServer(cfg, app)
	case *dashboard:
		runDashboard(app)
	case *filePath != "":
		runIngest(context.Background(), app, *filePath)
	case *query != "":
		runQuery(context.Background(), app, *query)
	default:
		log.Fatal().Msg("Please provide one of -serve, -dashboard, -file or -query")
	}
}

// app bundles the pipeline components, built once at process start and
// passed by reference; no component reaches for globals.
type app struct {
	ingestor *ingest.Ingestor
	pipeline *rag.Pipeline
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	embedder, err := embedding.NewEmbedder(&cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	var store vectorstore.Store
	switch cfg.Store.Backend {
	case "postgres":
		store, err = vectorstore.NewPostgresStore(ctx, cfg.Store.DSN, cfg.Store.EmbeddingDim, cfg.Store.Debug, embedder)
	default:
		store, err = vectorstore.NewChromemStore(vectorstore.ChromemConfig{
			Path:       cfg.Store.IndexDir,
			Collection: cfg.Store.Collection,
		}, embedder)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	generator, err := llmservice.New(&cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat model: %w", err)
	}

	splitter := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	return &app{
		ingestor: ingest.New(splitter, store),
		pipeline: rag.NewPipeline(store, generator, cfg.RAG.TopK),
	}, nil
}

func runServer(cfg *config.Config, app *app) {
	srv, err := server.NewServer(server.Config{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		DataDir: cfg.Store.DataDir,
	}, app.ingestor, app.pipeline, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating server")
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Info().Err(err).Msg("Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error shutting down server")
	}
}

func runDashboard(app *app) {
	if _, err := tea.NewProgram(tui.New(app), tea.WithAltScreen()).Run(); err != nil {
		log.Fatal().Err(err).Msg("Error running dashboard")
	}
}

func runIngest(ctx context.Context, app *app, filePath string) {
	chunks, err := app.ingestor.Ingest(ctx, filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error ingesting file")
	}
	fmt.Printf("Ingested %s: %d chunk(s) added\n", filePath, chunks)
}

func runQuery(ctx context.Context, app *app, question string) {
	state, err := app.pipeline.Run(ctx, question)
	if err != nil {
		log.Fatal().Err(err).Msg("Error answering question")
	}

	log.Info().Int("retrieved", len(state.Retrieved)).Msg("Answered question")
	fmt.Printf("%s\n\n%s\n", question, state.Answer)
}

// Ask implements tui.ChatPort.
func (a *app) Ask(ctx context.Context, question string) (string, error) {
	state, err := a.pipeline.Run(ctx, question)
	if err != nil {
		return "", err
	}
	return state.Answer, nil
}

// IngestFile implements tui.ChatPort.
func (a *app) IngestFile(ctx context.Context, path string) (int, error) {
	return a.ingestor.Ingest(ctx, path)
}

package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"showdown/internal/ai"
	"showdown/internal/ai/gemini"
	"showdown/internal/ai/openai"
	"showdown/internal/config"
	"showdown/internal/game"
	"showdown/internal/server"
	"showdown/internal/store"
	staticserver "showdown/static"
)

const version = "v1.0.0-dev"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Truth or Dare Showdown - AI party game server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT                Port to listen on (default: 8080)
  DEFAULT_PROVIDER    AI provider: "gemini" or "openai" (default: gemini)
  GEMINI_API_KEY      Gemini API key (required for Gemini provider)
  GEMINI_BASE_URL     Custom Gemini API base URL (optional)
  GEMINI_MODEL        Gemini generation model (default: gemini-2.0-flash)
  GEMINI_TTS_MODEL    Gemini speech model (default: gemini-2.5-flash-preview-tts)
  OPENAI_API_KEY      OpenAI API key (required for OpenAI provider)
  OPENAI_BASE_URL     Custom OpenAI API base URL (optional)
  OPENAI_MODEL        OpenAI model (default: gpt-4o-mini)
  DB_PATH             SQLite database path (default: ./showdown.db)
  EXPORT_ENABLED      Export finished games to a text file (default: false)
  EXPORT_FILE         Path for exported results (default: ./showdown-results.txt)

Without any API key the server falls back to its built-in prompt tables.

Visit http://localhost:8080 after starting the server.
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Truth or Dare Showdown %s\n", version)
		return
	}

	// Local overrides; absence of a .env file is fine.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Gin setup with custom zerolog request logging
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zerologlog.Info().
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("dur", time.Since(start)).
			Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Storage + game manager (resumes a saved game if one exists)
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	mgr := game.NewManager(db)
	if cfg.ExportEnabled {
		mgr.SetExportFile(cfg.ExportFile)
	}

	// API server + providers
	srv := server.New(mgr)
	ga := gemini.New(cfg.GeminiKey, cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiTTSModel)
	oa := openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)

	var provider ai.Provider
	switch {
	case cfg.DefaultProvider == "openai" && oa.Available():
		provider = oa
	case ga.Available():
		provider = ga
	case oa.Available():
		provider = oa
	}
	if provider == nil {
		zerologlog.Warn().Msg("no AI provider configured, serving built-in prompts")
	} else {
		srv.SetProvider(provider)
	}
	if ga.Available() {
		srv.SetSpeaker(ga)
	}
	srv.Mount(r)

	// Serve frontend (if embedded build is present) for all other routes
	r.NoRoute(func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})

	log.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

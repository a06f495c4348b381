package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/postforge/internal/api"
	"github.com/kalambet/postforge/internal/config"
	"github.com/kalambet/postforge/internal/imagegen"
	"github.com/kalambet/postforge/internal/llm"
	"github.com/kalambet/postforge/internal/pipeline"
	"github.com/kalambet/postforge/internal/serp"
	"github.com/kalambet/postforge/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the postforge server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running postforge server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show postforge system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	if dataDir == "" {
		dataDir = os.TempDir()
	}
	return filepath.Join(dataDir, "postforge.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "postforge version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if cfg.Providers.OpenAIAPIKey == "" && cfg.Providers.GeminiAPIKey == "" {
		printWarning("no provider API keys configured; generation requests will fail")
	}
	if cfg.Serp.APIKey == "" {
		printWarning("no Serper API key configured; SERP analysis will fail")
	}

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("postforge is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("postforge is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage: SQLite when a data dir is configured, memory otherwise.
	var st store.Store
	if cfg.Storage.DataDir != "" {
		sqlStore, err := store.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		st = sqlStore
	} else {
		slog.Info("no data dir configured, using in-memory store")
		st = store.NewMemStore()
	}
	defer func() {
		if err := st.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Build providers and the model router.
	router := llm.NewRouter(map[string]llm.Provider{
		llm.ProviderOpenAI: newOpenAIClient(cfg.Providers),
		llm.ProviderGoogle: newGeminiClient(cfg.Providers),
	})
	router.SetDefaultModel(cfg.Providers.DefaultModel)

	// Build pipeline stages.
	searcher := serp.NewClientWithBaseURL(cfg.Serp.APIKey, cfg.Serp.BaseURL)
	images := imagegen.NewGeneratorWithBaseURL(cfg.Images.BaseURL)
	imageOpts := imagegen.Options{
		Width:  cfg.Images.Width,
		Height: cfg.Images.Height,
		Model:  cfg.Images.Model,
	}

	analyzer := pipeline.NewAnalyzer(searcher, router, st)
	planner := pipeline.NewPlanner(router)
	writer := pipeline.NewWriter(router)
	auto := pipeline.NewAutoGenerator(analyzer, planner, writer, images, imageOpts)

	// Build HTTP handler and server.
	handler := api.NewHandler(api.Deps{
		Store:     st,
		Analyzer:  analyzer,
		Planner:   planner,
		Writer:    writer,
		Auto:      auto,
		Images:    images,
		ImageOpts: imageOpts,
		Token:     cfg.Server.APIToken,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Store:    st,
		Analyzer: analyzer,
		Auto:     auto,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "postforge listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newOpenAIClient(p config.ProvidersConfig) llm.Provider {
	if p.OpenAIBaseURL != "" {
		return llm.NewOpenAIClientWithBaseURL(p.OpenAIAPIKey, p.OpenAIBaseURL)
	}
	return llm.NewOpenAIClient(p.OpenAIAPIKey)
}

func newGeminiClient(p config.ProvidersConfig) llm.Provider {
	if p.GeminiBaseURL != "" {
		return llm.NewGeminiClientWithBaseURL(p.GeminiAPIKey, p.GeminiBaseURL)
	}
	return llm.NewGeminiClient(p.GeminiAPIKey)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("postforge is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop postforge (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to postforge (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	// Check server health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Default model", "%s", cfg.Providers.DefaultModel)
	printStatus("OpenAI key", "%s", keyLabel(cfg.Providers.OpenAIAPIKey))
	printStatus("Gemini key", "%s", keyLabel(cfg.Providers.GeminiAPIKey))
	printStatus("Serper key", "%s", keyLabel(cfg.Serp.APIKey))
	printStatus("Image model", "%s (%dx%d)", cfg.Images.Model, cfg.Images.Width, cfg.Images.Height)

	if cfg.Storage.DataDir != "" {
		printStatus("Data dir", "%s", cfg.Storage.DataDir)
	} else {
		printStatus("Data dir", "none (in-memory store)")
	}
	return nil
}

func keyLabel(key string) string {
	if key == "" {
		return "not set"
	}
	return "configured"
}

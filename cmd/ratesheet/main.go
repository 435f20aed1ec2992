package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/parsebill/ratesheet/internal/capture"
	"github.com/parsebill/ratesheet/internal/config"
	"github.com/parsebill/ratesheet/internal/extract"
	"github.com/parsebill/ratesheet/internal/intelligence"
	"github.com/parsebill/ratesheet/internal/mcp"
	"github.com/parsebill/ratesheet/internal/recognize"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// newLogger builds the process logger. Stdio mode stays silent unless
// debug is on, because stdout carries the MCP protocol and stderr noise
// confuses some clients.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsStdioMode() && !cfg.IsDebug() {
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, logger *zap.Logger) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		logger.Info("received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
		cancel()

		if err := <-serverErrCh; err != nil {
			logger.Error("server shutdown with error", zap.Error(err))
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, server *mcp.Server, logger *zap.Logger) {
	// In stdio mode the parent process controls our lifecycle; exit when
	// stdin closes or serving fails.
	if err := server.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

// runSpoolWatcher feeds frames from the scanner hot folder through the
// pipeline until ctx ends. Results are logged; the MCP tools remain the
// query surface.
func runSpoolWatcher(ctx context.Context, cfg *config.Config, svc *extract.Service, logger *zap.Logger) {
	device := capture.NewSpoolDevice(capture.SpoolConfig{Dir: cfg.SpoolDirectory, Logger: logger})
	manager := capture.NewManager(logger)

	session, err := manager.Acquire(ctx, device)
	if err != nil {
		logger.Warn("spool capture disabled", zap.Error(err))
		return
	}
	defer session.Close() //nolint:errcheck

	logger.Info("watching spool directory", zap.String("dir", cfg.SpoolDirectory))
	for {
		frame, err := session.Capture(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, capture.ErrNoFrame) {
				logger.Warn("spool capture stopped", zap.Error(err))
			}
			return
		}

		result := svc.ExtractFile(ctx, extract.ExtractFileRequest{Name: frame.Name, Data: frame.Data})
		logger.Info("spooled frame processed",
			zap.String("frame", frame.Name),
			zap.String("status", string(result.Status)),
			zap.Int("items", len(result.Items)))
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.IsDebug() {
		logger.Debug("starting with configuration", zap.String("config", cfg.String()))
	}

	engine, err := recognize.NewEngine(recognize.EngineTesseract, cfg.OCRLanguage)
	if err != nil {
		logger.Fatal("failed to set up text recognition", zap.Error(err))
	}
	recognizer := recognize.NewRecognizer(recognize.Config{
		Engine:       engine,
		MaxImageSize: cfg.MaxFileSize,
		Logger:       logger,
	})

	svc := extract.NewService(extract.ServiceConfig{
		MaxFileSize: cfg.MaxFileSize,
		FileTimeout: cfg.FileTimeout,
		Recognizer:  recognizer,
		Logger:      logger,
	})

	classifier := intelligence.NewClassifier(logger)

	server, err := mcp.NewServer(cfg, svc, classifier, logger)
	if err != nil {
		logger.Fatal("failed to create MCP server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SpoolDirectory != "" {
		go runSpoolWatcher(ctx, cfg, svc, logger)
	}

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server, logger)
	} else {
		runStdioMode(ctx, server, logger)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Ratesheet MCP Server\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}

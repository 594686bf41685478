package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/armchr/vectorapi/internal/config"
	"github.com/armchr/vectorapi/internal/controller"
	"github.com/armchr/vectorapi/internal/handler"
	"github.com/armchr/vectorapi/internal/service/vector"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// parseLogLevel converts a string log level to zapcore.Level
func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel // default to info
	}
}

func main() {
	var configPath = flag.String("config", "app.yaml", "Path to configuration file")
	var envFile = flag.String("env", "", "Path to .env file (optional)")
	var httpMode = flag.Bool("http", false, "Serve the REST API instead of MCP over stdio")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatal("Failed to load env file:", err)
		}
	} else {
		// Best effort; a missing .env is fine.
		_ = godotenv.Load()
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	cfgZap := zap.NewProductionConfig()
	cfgZap.Level.SetLevel(parseLogLevel(cfg.App.LogLevel))
	// stdout carries the MCP protocol stream; logs go to stderr.
	cfgZap.OutputPaths = []string{"stderr"}
	logger, err := cfgZap.Build()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer logger.Sync()

	db, err := vector.NewQdrantDatabase(cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.APIKey, cfg.Qdrant.UseTLS, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Qdrant", zap.Error(err))
	}
	defer db.Close()

	docs := controller.NewDocumentController(db, cfg, logger)

	if *httpMode || cfg.App.HTTP {
		router := handler.SetupRouter(docs, db, cfg, logger)
		logger.Info("Starting HTTP server", zap.Int("port", cfg.App.Port))
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), router); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
		return
	}

	server := handler.NewMCPServer(docs, cfg, logger)
	logger.Info("Starting MCP server on stdio")
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logger.Fatal("MCP server exited", zap.Error(err))
	}
}

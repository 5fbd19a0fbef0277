// Package main runs the books catalog API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/JakeFAU/books-catalog-api/internal/config"
	"github.com/JakeFAU/books-catalog-api/internal/logging"
	"github.com/JakeFAU/books-catalog-api/internal/server"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	envPath := flag.String("env", ".env", "Path to an optional dotenv file")
	flag.Parse()

	if err := run(*cfgPath, *envPath); err != nil {
		fmt.Fprintf(os.Stderr, "booksapi: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, envPath string) error {
	// Values already in the environment win over the dotenv file.
	envErr := godotenv.Load(envPath)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(logging.Options{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
	})
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("dotenv file not loaded", zap.String("path", envPath), zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error("service stopped with error", zap.Error(err))
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/ai"
	"github.com/flowsight/flowsight/internal/apiserver"
	"github.com/flowsight/flowsight/internal/apiserver/database"
	"github.com/flowsight/flowsight/internal/auth/jwt"
	"github.com/flowsight/flowsight/internal/common/config"
	"github.com/flowsight/flowsight/pkg/logger"
	"github.com/flowsight/flowsight/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "FlowSight API Server",
		Long:  `FlowSight API Server provides the analytics dashboard API: auth, CSV import, workspace resolution and reporting endpoints`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, cfgPath, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	zapLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting apiserver",
		zap.String("version", version.Get()),
		zap.String("config", cfgPath))

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if cfg.SeedDemo {
		if err := database.SeedDemoWorkspace(context.Background(), db); err != nil {
			zapLogger.Fatal("Failed to seed demo workspace", zap.Error(err))
		}
		zapLogger.Info("Demo workspace ready")
	}

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
		Duration:  cfg.JWT.Duration,
	})
	if err != nil {
		zapLogger.Fatal("Failed to initialize JWT service", zap.Error(err))
	}

	aiService := ai.NewService(cfg, zapLogger)
	defer aiService.Close()

	router := apiserver.NewRouter(db, jwtService, aiService, cfg, zapLogger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		zapLogger.Info("Server listening", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exited")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

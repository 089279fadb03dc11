package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-competitive-intel/internal/analyzer/config"
	"golang-competitive-intel/internal/analyzer/delivery/consumer"
	delivery "golang-competitive-intel/internal/analyzer/delivery/http"
	"golang-competitive-intel/internal/analyzer/repository"
	"golang-competitive-intel/internal/analyzer/service"
	"golang-competitive-intel/internal/entity"
	"golang-competitive-intel/pkg/logger"
	"golang-competitive-intel/pkg/postgres"
	"golang-competitive-intel/pkg/redis"
	"golang-competitive-intel/pkg/telegram"
	"golang-competitive-intel/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var (
	configPath  string
	runMode     string
	runTopic    string
	runLookback int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the analyzer service (scheduler, API and report notifier)",
	Run:   runServe,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Executes a single analysis run and exits",
	Run:   runOnce,
}

type dependencies struct {
	cfg         *config.Config
	logger      *logger.Logger
	db          *postgres.DB
	redisClient *redis.Client
	pipeline    service.PipelineService
	runRepo     repository.AnalysisRunRepository
	findingRepo repository.FindingRepository
	updateRepo  repository.CompetitorUpdateRepository
	trendRepo   repository.TrendRepository
	oppRepo     repository.OpportunityRepository
}

func buildDependencies(ctx context.Context) (*dependencies, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	findingRepo := repository.NewFindingRepository(db.DB)
	updateRepo := repository.NewCompetitorUpdateRepository(db.DB)
	trendRepo := repository.NewTrendRepository(db.DB)
	oppRepo := repository.NewOpportunityRepository(db.DB)
	runRepo := repository.NewAnalysisRunRepository(db.DB)

	searchRepo, err := repository.NewSignalSearchRepository(cfg, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize search repository: %w", err)
	}

	insightsRepo := repository.NewTemplateInsightsRepository()
	if cfg.Gemini.Enabled {
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		insightsRepo = repository.NewGeminiInsightsRepository(cfg, appLogger, genAiClient)
	}

	ledger := service.NewRunLedger(runRepo, appLogger)
	pipeline, err := service.NewPipelineService(cfg, appLogger, searchRepo, findingRepo, updateRepo, trendRepo, oppRepo, insightsRepo, ledger, redisClient.Client)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	return &dependencies{
		cfg:         cfg,
		logger:      appLogger,
		db:          db,
		redisClient: redisClient,
		pipeline:    pipeline,
		runRepo:     runRepo,
		findingRepo: findingRepo,
		updateRepo:  updateRepo,
		trendRepo:   trendRepo,
		oppRepo:     oppRepo,
	}, nil
}

func (d *dependencies) close() {
	if sqlDB, err := d.db.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = d.redisClient.Close()
	_ = d.logger.Sync()
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := buildDependencies(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize analyzer service: %v", err)
	}
	defer deps.close()

	appLogger := deps.logger
	appLogger.Info("Starting Analyzer Service", logger.StringField("name", deps.cfg.App.Name))

	// Scheduled runs.
	schedulerSvc := service.NewSchedulerService(deps.pipeline, appLogger, deps.cfg)
	utils.GoSafe(func() {
		if err := schedulerSvc.Start(ctx); err != nil {
			appLogger.Error("Scheduler failed", logger.ErrorField(err))
			stop()
		}
	})

	// Report delivery.
	var reportConsumer *consumer.ReportConsumer
	if deps.cfg.Telegram.Enabled {
		notifier, err := telegram.NewClient(deps.cfg.Telegram.BotToken, deps.cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize telegram notifier", logger.ErrorField(err))
		}
		reportConsumer = consumer.NewReportConsumer(deps.cfg, deps.redisClient.Client, notifier, appLogger)
		reportConsumer.Start(ctx)
	}

	// Read API.
	e := echo.New()
	e.HideBanner = true

	apiV1 := e.Group("/api/v1")
	runHandler := delivery.NewRunHandler(deps.pipeline, deps.runRepo, deps.oppRepo, appLogger)
	runHandler.RegisterRoutes(apiV1.Group("/runs"))

	intelHandler := delivery.NewIntelHandler(deps.findingRepo, deps.updateRepo, deps.trendRepo, deps.oppRepo, appLogger)
	intelHandler.RegisterRoutes(apiV1.Group("/intel"))

	go func() {
		addr := fmt.Sprintf(":%d", deps.cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down analyzer service...")

	if reportConsumer != nil {
		reportConsumer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Analyzer service exiting")
}

func runOnce(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := buildDependencies(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize analyzer service: %v", err)
	}
	defer deps.close()

	mode := entity.RunMode(runMode)
	run, err := deps.pipeline.Run(ctx, mode, runTopic, runLookback)
	if err != nil {
		deps.logger.Fatal("Analysis run failed", logger.ErrorField(err), logger.StringField("mode", runMode))
	}

	deps.logger.Info("Analysis run finished",
		logger.Field("run_id", run.ID),
		logger.StringField("status", string(run.Status)),
		logger.IntField("findings", run.FindingsCount),
		logger.IntField("competitor_updates", run.CompetitorUpdatesCount),
		logger.IntField("trends_updated", run.TrendsUpdatedCount),
		logger.IntField("opportunities", run.OpportunitiesIdentified),
	)
}

func main() {
	rootCmd := &cobra.Command{Use: "analyzer-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	runCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "quick", "Run mode: daily|weekly|quick|competitor|trends")
	runCmd.Flags().StringVarP(&runTopic, "topic", "t", "", "Optional topic or competitor to focus on")
	runCmd.Flags().IntVarP(&runLookback, "lookback", "l", 0, "Lookback window in days (0 = configured default)")

	rootCmd.AddCommand(serveCmd, runCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analyzer-service CLI: %s\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/foliochat/internal/ai"
	"github.com/xxxsen/foliochat/internal/config"
	"github.com/xxxsen/foliochat/internal/filestore"
	"github.com/xxxsen/foliochat/internal/handler"
	"github.com/xxxsen/foliochat/internal/middleware"
	"github.com/xxxsen/foliochat/internal/profile"
	"github.com/xxxsen/foliochat/internal/service"
	"github.com/xxxsen/foliochat/internal/vectorstore"
)

func main() {
	var configPath string
	var envPath string

	rootCmd := &cobra.Command{
		Use:   "foliochat",
		Short: "portfolio chat server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run foliochat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			if err := config.LoadEnv(envPath); err != nil {
				return fmt.Errorf("load env: %w", err)
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	runCmd.Flags().StringVar(&envPath, "env", ".env", "path to dotenv file holding secrets")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadProfile(ctx context.Context, cfg *config.Config) (*profile.Profile, error) {
	if cfg.Profile.FileStore == nil {
		return profile.Default(), nil
	}
	store, err := filestore.New(*cfg.Profile.FileStore)
	if err != nil {
		return nil, fmt.Errorf("init profile store: %w", err)
	}
	p, err := profile.Load(ctx, store, cfg.Profile.Key)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

func buildChatService(ctx context.Context, cfg *config.Config) (*service.ChatService, vectorstore.Store, error) {
	p, err := loadProfile(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	chatProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("init ai provider: %w", err)
	}
	embedProvider, err := ai.NewEmbedProvider(cfg.Embedding.Provider, cfg.Embedding.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("init embedding provider: %w", err)
	}
	store, err := vectorstore.New(ctx, cfg.VectorStore)
	if err != nil {
		return nil, nil, fmt.Errorf("init vector store: %w", err)
	}

	generator := ai.NewGenerator(chatProvider, cfg.AI.Model, ai.CompleteOptions{
		Temperature: *cfg.AI.Temperature,
		JSON:        cfg.AI.StructuredOutput,
	}, time.Duration(cfg.AI.Timeout)*time.Second)
	embedder := ai.NewEmbedder(embedProvider, cfg.Embedding.Model, time.Duration(cfg.Embedding.Timeout)*time.Second)
	retriever := service.NewRetriever(embedder, store, cfg.Embedding.TaskType, cfg.Retrieval)

	chat := service.NewChatService(p, retriever, generator, store, service.ChatServiceConfig{
		Polarity:    cfg.VectorStore.ScorePolarity,
		Structured:  cfg.AI.StructuredOutput,
		PromptPills: cfg.Pills.PromptPills,
		Limits:      cfg.Pills.Limits,
	})
	logutil.GetLogger(ctx).Info("chat service ready",
		zap.String("profile", p.Name),
		zap.String("ai_provider", chatProvider.Name()),
		zap.String("ai_model", cfg.AI.Model),
		zap.String("embed_provider", embedProvider.Name()),
		zap.String("embed_model", embedder.ModelName()),
		zap.String("vector_store", store.Type()),
		zap.String("score_polarity", string(cfg.VectorStore.ScorePolarity)),
	)
	return chat, store, nil
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("vector_store", cfg.VectorStore.Type),
	)

	chat, store, err := buildChatService(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	deps := handler.RouterDeps{
		Chat: handler.NewChatHandler(chat),
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/muhammadolammi/cvboard/internal/auth"
	"github.com/muhammadolammi/cvboard/internal/database"
	"github.com/muhammadolammi/cvboard/internal/generation"
	"github.com/muhammadolammi/cvboard/internal/obs"
	"github.com/muhammadolammi/cvboard/internal/payment"
	"github.com/muhammadolammi/cvboard/internal/storage"
	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "cvboard",
		Short:         "CV builder and job board backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), workerCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadServerEnv()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), env)
		},
	}
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the CV match worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadWorkerEnv()
			if err != nil {
				return err
			}
			return runWorkers(cmd.Context(), env)
		},
	}
}

func openDB(dbUrl string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dbUrl)
	if err != nil {
		return nil, fmt.Errorf("error opening db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func serve(ctx context.Context, env serverEnv) error {
	logger, err := obs.NewLogger(env.AppEnv)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	obs.Init()

	db, err := openDB(env.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	tasks, err := generation.LoadRegistry(env.TaskConfig)
	if err != nil {
		return err
	}
	provider, err := generation.NewGeminiProvider(ctx, env.GoogleAPIKey)
	if err != nil {
		return err
	}

	r2, err := storage.NewR2(ctx, env.R2)
	if err != nil {
		return err
	}

	verifier, err := auth.NewVerifier(env.AuthSecret, env.AuthIssuer)
	if err != nil {
		return err
	}

	payments, err := payment.NewClient(env.Payment)
	if err != nil {
		return err
	}

	conn, err := amqp.Dial(env.RabbitMQUrl)
	if err != nil {
		return fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}
	defer conn.Close()

	apiCfg := &ApiConfig{
		DB:             database.New(db),
		DBConn:         db,
		Invoker:        generation.NewInvoker(tasks, provider),
		Storage:        r2,
		Payments:       payments,
		Publisher:      &amqpPublisher{conn: conn},
		Auth:           verifier,
		Logger:         logger,
		AIRatePerSec:   env.AIRatePerSec,
		AIRateBurst:    env.AIRateBurst,
		TrustedProxies: env.TrustedProxies,
	}

	srv := newHTTPServer(":"+env.Port, apiCfg.routes())
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting cvboard api", zap.String("addr", srv.Addr), zap.Int("tasks", tasks.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runWorkers(ctx context.Context, env workerEnv) error {
	logger, err := obs.NewLogger(env.AppEnv)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := openDB(env.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	r2, err := storage.NewR2(ctx, env.R2)
	if err != nil {
		return err
	}

	agentName := "cv matcher"
	matcher, err := GetAgent(ctx, env.GoogleAPIKey, agentName, env.MatchModel)
	if err != nil {
		return err
	}
	inMemoryService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        matcher.Name(),
		Agent:          matcher,
		SessionService: inMemoryService,
	})
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	conn, err := amqp.Dial(env.RabbitMQUrl)
	if err != nil {
		return fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}
	defer conn.Close()

	workerConfig := WorkerConfig{
		DB:                  database.New(db),
		Storage:             r2,
		RabbitConn:          conn,
		RABBITMQUrl:         env.RabbitMQUrl,
		AgentRunner:         r,
		AgentSessionService: inMemoryService,
		AgentName:           agentName,
		Logger:              logger,
	}

	logger.Info("starting consumer worker pool", zap.Int("workers", env.Workers))
	return workerConfig.StartConsumerWorkerPool(ctx, env.Workers)
}

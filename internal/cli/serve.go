package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aakankshagupta18/klean-backend/internal/application"
	appai "github.com/aakankshagupta18/klean-backend/internal/application/ai"
	appcompute "github.com/aakankshagupta18/klean-backend/internal/application/compute"
	appocr "github.com/aakankshagupta18/klean-backend/internal/application/ocr"
	"github.com/aakankshagupta18/klean-backend/internal/config"
	"github.com/aakankshagupta18/klean-backend/internal/infra/ai"
	"github.com/aakankshagupta18/klean-backend/internal/infra/compute"
	"github.com/aakankshagupta18/klean-backend/internal/infra/db/migrations"
	"github.com/aakankshagupta18/klean-backend/internal/infra/httpserver"
	"github.com/aakankshagupta18/klean-backend/internal/infra/ocr"
	"github.com/aakankshagupta18/klean-backend/internal/infra/storage"
	"github.com/aakankshagupta18/klean-backend/internal/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0, "listen port (overrides server.port, env KLEAN_PORT)")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, logger := a.cfg, a.logger

	if p := viper.GetInt("port"); p > 0 {
		cfg.Server.Port = p
	}

	if cfg.Database.MigrateOnStart {
		m, err := migrations.New(cfg.Database.Driver, config.MigrateURL(cfg.Database.Driver, a.dsn))
		if err != nil {
			return err
		}
		err = migrations.Up(m)
		_, _ = m.Close()
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	client, err := ai.NewClient(ai.Config{
		Provider: cfg.Inference.Provider,
		BaseURL:  cfg.Inference.BaseURL,
		APIKey:   cfg.Inference.APIKey,
		Timeout:  cfg.InferenceTimeout(),
	})
	if err != nil {
		return err
	}

	health := []middleware.Check{middleware.DatabaseCheck(a.db)}
	if p, ok := client.(middleware.Pinger); ok {
		health = append(health, middleware.InferenceCheck(p))
	}

	deps := httpserver.Deps{
		Ingredients:    a.ingredientService(),
		AI:             appai.NewService(client, cfg.Inference.Models),
		Compute:        &appcompute.Service{Logger: logger},
		Health:         health,
		APIKeys:        cfg.Auth.APIKeys,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: int64(cfg.OCR.MaxUploadMB) << 20,
		Logger:         logger,
	}

	if cfg.OCR.Enabled {
		svc := &appocr.Service{
			Extractor: ocr.NewTesseract(cfg.OCR.Languages...),
			Clock:     application.SystemClock{},
			MaxPixels: cfg.OCR.MaxMegapixels * 1_000_000,
			Logger:    logger,
		}
		if cfg.Minio.Enabled {
			store, err := storage.New(ctx,
				cfg.Minio.Endpoint,
				cfg.Minio.Region,
				cfg.Minio.BucketName,
				cfg.Minio.AccessKey,
				cfg.Minio.SecretKey,
				cfg.Minio.UseSSL,
			)
			if err != nil {
				return fmt.Errorf("minio init: %w", err)
			}
			svc.Artifacts = store
		}
		deps.OCR = svc
	}

	if cfg.Compute.InstanceID != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Compute.Region))
		if err != nil {
			return fmt.Errorf("aws config: %w", err)
		}
		deps.Compute.Controller = compute.NewFromConfig(awsCfg, cfg.Compute.InstanceID)
	}

	if cfg.RateLimit.Enabled {
		deps.RateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, 10*time.Minute)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpserver.NewRouter(deps),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

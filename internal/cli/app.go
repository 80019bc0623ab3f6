package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/viper"

	appingredients "github.com/aakankshagupta18/klean-backend/internal/application/ingredients"
	"github.com/aakankshagupta18/klean-backend/internal/config"
	domain "github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
	mysqlp "github.com/aakankshagupta18/klean-backend/internal/infra/db/mysql"
	"github.com/aakankshagupta18/klean-backend/internal/infra/db/postgres"
	"github.com/aakankshagupta18/klean-backend/internal/infra/secrets"
)

// app holds the state shared by every command. It is built once and torn
// down with close.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	dsn    string
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetString("config"))
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newApp loads configuration, resolves credentials and opens the pool.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	dsn, err := resolveDSN(ctx, cfg)
	if err != nil {
		return nil, err
	}
	db, err := openDB(ctx, cfg, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s connect: %w", cfg.Database.Driver, err)
	}
	logger.Info("database connected", "driver", cfg.Database.Driver, "host", cfg.Database.Host)
	return &app{cfg: cfg, logger: logger, db: db, dsn: dsn}, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *app) repository() domain.Repository {
	if a.cfg.Database.Driver == "mysql" {
		return mysqlp.NewIngredientRepository(a.db)
	}
	return postgres.NewIngredientRepository(a.db)
}

func (a *app) ingredientService() *appingredients.Service {
	return &appingredients.Service{
		Repo:            a.repository(),
		Tables:          a.cfg.Catalog.Tables,
		ClassifyVariant: a.cfg.Catalog.ClassifyVariant,
		Threshold:       a.cfg.Catalog.Threshold,
		Logger:          a.logger,
	}
}

// resolveDSN uses the Secrets Manager secret when one is configured and the
// config fields otherwise.
func resolveDSN(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.Database.SecretName == "" {
		return cfg.DSN(), nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return "", fmt.Errorf("aws config: %w", err)
	}
	s, err := secrets.NewFromConfig(awsCfg).Database(ctx, cfg.Database.SecretName)
	if err != nil {
		return "", err
	}
	cfg.Database.Host = s.Host
	if cfg.Database.Driver == "mysql" {
		return s.MySQLDSN(), nil
	}
	return s.PostgresURL(cfg.Database.SSLMode), nil
}

func openDB(ctx context.Context, cfg *config.Config, dsn string) (*sql.DB, error) {
	lifetime := time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute
	if cfg.Database.Driver == "mysql" {
		return mysqlp.Connect(ctx, dsn, mysqlp.Pool{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: lifetime,
		})
	}
	return postgres.Connect(ctx, dsn, postgres.Pool{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: lifetime,
	})
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rcrowley/go-metrics"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-jobboard"
)

// ShutdownTimeout bounds how long in flight requests may take to drain
const ShutdownTimeout = 10 * time.Second

type App struct {
	config  *jobboard.Settings
	bunDB   *bun.DB
	redis   *redis.Client
	repo    jobboard.RepositoryManager
	metrics *jobboard.RegistryMetrics
	srv     router.Server[*fiber.App]
	logger  *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	cfg, err := jobboard.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	lgr := newLogger(cfg.Debug)

	fmt.Println("============")
	fmt.Println(print.MaybePrettyJSON(cfg.Redacted()))
	fmt.Println("============")

	app := &App{
		config:  cfg,
		logger:  lgr,
		metrics: jobboard.NewRegistryMetrics(metrics.NewRegistry(), "jobboard"),
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if cfg.MetricsLogInterval > 0 {
		go metrics.Log(app.metrics.Registry(), cfg.MetricsLogInterval, log.New(os.Stderr, "metrics: ", log.Lmicroseconds))
	}

	err = RunServer(app, ":"+cfg.Port, ExitSignals())
	app.Close()
	if err != nil {
		app.GetLogger("app").Error("job server stopped", "error", err)
		os.Exit(1)
	}
}

// RunServer serves until stop fires or the listener fails, then drains
// in flight requests within ShutdownTimeout.
func RunServer(app *App, addr string, stop <-chan os.Signal) error {
	logger := app.GetLogger("app")

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.srv.Serve(addr)
	}()

	logger.Info("job server listening", "address", addr, "environment", app.config.Environment)

	select {
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return errors.Wrap(err, errors.CategoryInternal, "server failed")
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := app.srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "server shutdown failed")
	}
	return nil
}

// Close releases the event and database connections
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.bunDB != nil {
		_ = a.bunDB.Close()
	}
}

func newLogger(debug bool) *glog.BaseLogger {
	if debug {
		return glog.NewLogger(
			glog.WithLoggerTypePretty(),
			glog.WithLevel(glog.Trace),
			glog.WithName("jobboard"),
			glog.WithAddSource(false),
			glog.WithRichErrorHandler(errors.ToSlogAttributes),
		)
	}
	return glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithName("jobboard"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
}

func WithPersistence(ctx context.Context, app *App) error {
	var db *bun.DB

	switch app.config.DBDriver {
	case "postgres":
		sqldb, err := sql.Open("pgx", app.config.DatabaseURL)
		if err != nil {
			return err
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		sqldb, err := sql.Open(sqliteshim.ShimName, app.config.DatabaseURL)
		if err != nil {
			return err
		}
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	app.bunDB = db
	app.repo = jobboard.NewRepositoryManager(db)
	app.repo.MustValidate()

	if err := app.repo.Migrate(ctx); err != nil {
		return err
	}

	app.GetLogger("persistence").Info("database ready", "driver", app.config.DBDriver)
	return nil
}

func WithStatusPublisher(ctx context.Context, app *App) jobboard.StatusPublisher {
	logger := app.GetLogger("events")

	if app.config.RedisURL == "" {
		logger.Info("REDIS_URL not set, status events disabled")
		return jobboard.NopPublisher{}
	}

	client, err := jobboard.NewRedisClient(app.config.RedisURL)
	if err != nil {
		logger.Error("redis disabled", "error", err)
		return jobboard.NopPublisher{}
	}

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not reachable, events may be lost", "error", err)
	}

	app.redis = client
	return jobboard.NewRedisStatusPublisher(client, app.config.StatusChannel)
}

func WithHTTPServer(ctx context.Context, app *App) error {
	tokens, err := jobboard.NewTokenService(app.config,
		jobboard.WithTokenLogger(app.GetLogger("auth:codec")),
	)
	if err != nil {
		return err
	}

	board := jobboard.NewBoard(app.repo,
		jobboard.WithBoardLogger(app.GetLogger("board")),
		jobboard.WithBoardMetrics(app.metrics),
		jobboard.WithStatusPublisher(WithStatusPublisher(ctx, app)),
		jobboard.WithBoardConfig(app.config),
	)

	controller := jobboard.NewBoardController(board, tokens, jobboard.NewSessionCookies(app.config), app.config,
		jobboard.WithControllerLogger(app.GetLogger("http")),
		jobboard.WithControllerMetrics(app.metrics),
		jobboard.WithControllerDebug(app.config.Debug),
	)

	srv := router.NewFiberAdapter(func(_ *fiber.App) *fiber.App {
		f := router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: app.config.Debug,
			StrictRouting:     false,
		}))
		f.Use(cors.New(cors.Config{
			AllowOrigins:     app.config.GetCORSOrigins(),
			AllowCredentials: true,
		}))
		return f
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	jobboard.RegisterRoutes(srv.Router(), controller)

	app.srv = srv
	return nil
}

func ExitSignals() <-chan os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return ch
}

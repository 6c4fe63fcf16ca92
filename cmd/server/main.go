package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"evtickets/bot"
	"evtickets/impl/auth"
	"evtickets/impl/core"
	"evtickets/internal/config"
	"evtickets/internal/database"
	"evtickets/internal/http-server/api"
	"evtickets/internal/metrics"
	"evtickets/internal/qr"
	"evtickets/lib/logger"
	"evtickets/lib/sl"
)

const (
	logFileName     = "evtickets.log"
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg, closeLog, err := logger.SetupLogger(conf.Env, filepath.Join(*logPath, logFileName))
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()
	lg.Info("starting evtickets", slog.String("config", *configPath), slog.String("env", conf.Env))

	if conf.Telegram.Enabled {
		level := bot.ParseLevel(conf.Telegram.MinLevel)
		tgBot, err := bot.NewTgBot(conf.Telegram.ApiKey, conf.Telegram.ChatIds, level, lg)
		if err != nil {
			lg.Error("telegram bot", sl.Err(err))
		} else {
			lg = logger.WithAlerts(lg, tgBot, level)
			lg.Info("telegram alerts enabled")
		}
	}

	if err := run(conf, lg); err != nil {
		lg.Error("service stopped", sl.Err(err))
		closeLog()
		os.Exit(1)
	}
	lg.Info("service stopped")
}

// run owns every external client: each is created here, injected, and released before return.
func run(conf *config.Config, lg *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	mongo, err := database.NewMongoClient(ctx, conf)
	if err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer closeCancel()
		if err := mongo.Close(closeCtx); err != nil {
			lg.Error("mongodb disconnect", sl.Err(err))
		}
	}()
	lg.With(slog.String("host", conf.Mongo.Host), slog.String("database", conf.Mongo.Database)).Info("mongodb connected")

	// the firebase client keeps its context for credential refresh
	fbClient, err := auth.NewFirebaseClient(context.Background(), conf.Firebase)
	if err != nil {
		return fmt.Errorf("firebase: %w", err)
	}
	authService := auth.New(fbClient, lg)

	if conf.Redis.Enabled {
		opts, err := redis.ParseURL(conf.Redis.URL)
		if err != nil {
			return fmt.Errorf("redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer func() {
			if err := rdb.Close(); err != nil {
				lg.Error("redis close", sl.Err(err))
			}
		}()
		if err = rdb.Ping(ctx).Err(); err != nil {
			lg.Warn("redis not reachable, token cache disabled", sl.Err(err))
		} else {
			authService.SetCache(rdb, time.Duration(conf.Redis.TTLMinutes)*time.Minute)
			lg.Info("token cache enabled")
		}
	}

	m := metrics.New()
	handler := core.New(mongo, authService, qr.NewEncoder(conf.Tickets.QRModulePx, conf.Tickets.QRQuietZone), lg)
	handler.SetMetrics(m)
	handler.SetTokenBytes(conf.Tickets.TokenBytes)

	server := api.New(conf, lg, handler, m)

	errs := make(chan error, 1)
	go func() {
		errs <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err = <-errs:
		return err
	case sig := <-stop:
		lg.Info("shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errs
}

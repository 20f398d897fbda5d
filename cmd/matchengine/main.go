// Command matchengine is the observable CLI surface around the cross-venue
// matching core (§6), in the teacher's cmd/cryptorun/main.go idiom: one
// cobra root command, one subcommand per canonical operation, all wiring
// built once in main and threaded through an app struct.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/linkforge/venuematch/internal/config"
	venuelog "github.com/linkforge/venuematch/internal/log"
	"github.com/linkforge/venuematch/internal/net/ratelimit"
	"github.com/linkforge/venuematch/internal/ops"
	"github.com/linkforge/venuematch/internal/persistence/postgres"
	"github.com/linkforge/venuematch/internal/pipelines"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/watchlist"
)

const appName = "matchengine"

// app holds every collaborator a subcommand might need. Built once in main,
// passed by pointer to each RunE closure.
type app struct {
	cfg      config.Config
	repo     ports.Repository
	cache    *watchlist.Cache
	log      zerolog.Logger
	limiters *ratelimit.Manager

	lastRun   *ops.Result
	lastRunOK bool
}

func (a *app) recordRun(r ops.Result) {
	cp := r
	a.lastRun = &cp
	a.lastRunOK = true
}

// LastRun implements internal/interfaces/http.LastRunProvider.
func (a *app) LastRun() (ops.Result, bool) {
	if a.lastRun == nil {
		return ops.Result{}, false
	}
	return *a.lastRun, a.lastRunOK
}

func main() {
	cfg := config.Load()
	logger := venuelog.Setup(cfg.Infra.LogLevel)

	db, err := sqlx.Open("postgres", cfg.Infra.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := pingWithTimeout(db, 5*time.Second); err != nil {
		logger.Warn().Err(err).Msg("database ping failed, continuing (commands will error on first query)")
	}

	repo := postgres.New(db, 10*time.Second)
	pipelines.RegisterAll(repo)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Infra.RedisAddr,
		Password: cfg.Infra.RedisPassword,
		DB:       cfg.Infra.RedisDB,
	})
	cache := watchlist.New(rdb, repo, time.Duration(cfg.Infra.WatchlistTTL)*time.Second)

	a := &app{cfg: cfg, repo: repo, cache: cache, log: logger, limiters: ratelimit.NewManager()}

	root := &cobra.Command{
		Use:     appName,
		Short:   "cross-venue prediction-market matching engine",
		Version: "1.0.0",
	}

	root.AddCommand(
		a.suggestMatchesCmd(),
		a.linksAutoConfirmCmd(),
		a.linksAutoRejectCmd(),
		a.linksQueueCmd(),
		a.confirmMatchCmd(),
		a.rejectMatchCmd(),
		a.opsRunCmd(),
		a.opsKPICmd(),
		a.serveCmd(),
		a.taxonomyOverlapCmd(),
		a.sportsCmd(),
		a.cryptoCmd(),
		a.kalshiCmd(),
		a.overlapReportCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func pingWithTimeout(db *sqlx.DB, d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return db.PingContext(ctx)
}

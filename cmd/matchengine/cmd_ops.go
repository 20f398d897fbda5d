package main

import (
	"context"
	"fmt"
	"net/http"
	urlpkg "net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/linkforge/venuematch/internal/config"
	"github.com/linkforge/venuematch/internal/domain"
	httpiface "github.com/linkforge/venuematch/internal/interfaces/http"
	"github.com/linkforge/venuematch/internal/net/retry"
	"github.com/linkforge/venuematch/internal/ops"
)

const taxonomyMaintenanceProvider = "taxonomy_maintenance"

// opsRunCmd implements `ops:run --mode v3 --topics T1,T2,... [--apply] [--with-taxonomy-maintenance]`.
func (a *app) opsRunCmd() *cobra.Command {
	var mode, topicsFlag, from, to string
	var apply, withMaintenance bool
	var lookbackHours int

	cmd := &cobra.Command{
		Use:   "ops:run",
		Short: "run the full operational loop (§4.8): preflight, orchestrator, watchlist sync, KPIs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode != "v3" {
				return fmt.Errorf("unsupported --mode %q, only 'v3' is implemented", mode)
			}
			topics, err := parseTopicList(topicsFlag)
			if err != nil {
				return err
			}

			req := ops.Request{
				Topics:                topics,
				FromVenue:             domain.Venue(from),
				ToVenue:               domain.Venue(to),
				LookbackHours:         lookbackHours,
				Apply:                 apply,
				AutoConfirm:           apply,
				AutoReject:            apply,
				WatchlistMaxTotal:     500,
				WatchlistMaxPerVenue:  250,
				WatchlistMaxSuggested: 100,
			}
			if withMaintenance {
				req.WithTaxonomyMaintenance = true
				req.MaintenanceFn = a.taxonomyMaintenanceFn()
			}

			result := ops.Run(cmd.Context(), a.repo, a.cache, a.log, req)
			a.recordRun(result)
			printOpsResult(result)
			if len(result.StepErrors) > 0 {
				return fmt.Errorf("%d step(s) failed", len(result.StepErrors))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "v3", "matching mode (only 'v3' is implemented)")
	cmd.Flags().StringVar(&topicsFlag, "topics", "", "comma-separated canonical topics (required)")
	cmd.Flags().StringVar(&from, "from", string(domain.VenueKalshi), "left venue")
	cmd.Flags().StringVar(&to, "to", string(domain.VenuePolymarket), "right venue")
	cmd.Flags().BoolVar(&apply, "apply", false, "persist suggestions/confirmations instead of a dry run")
	cmd.Flags().BoolVar(&withMaintenance, "with-taxonomy-maintenance", false, "invoke the external taxonomy-maintenance collaborator first")
	cmd.Flags().IntVar(&lookbackHours, "lookback-hours", 168, "lookback window in hours")
	cmd.MarkFlagRequired("topics")
	return cmd
}

// opsKPICmd implements `ops:kpi`: prints the most recent in-process ops:run's KPI summary.
func (a *app) opsKPICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops:kpi",
		Short: "print the KPI summary from the most recent ops:run in this process",
		RunE: func(cmd *cobra.Command, args []string) error {
			last, ok := a.LastRun()
			if !ok {
				fmt.Println("no ops:run has executed in this process yet")
				return nil
			}
			printOpsResult(last)
			return nil
		},
	}
}

// serveCmd implements the read-only HTTP monitoring surface (§6).
func (a *app) serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "start the read-only /healthz and /metrics HTTP surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := httpiface.DefaultServerConfig()
			cfg.Host = a.cfg.Infra.HTTPHost
			if port != 0 {
				cfg.Port = port
			} else {
				cfg.Port = a.cfg.Infra.HTTPPort
			}
			server, err := httpiface.NewServer(cfg, a.log, a)
			if err != nil {
				return err
			}
			if err := server.Start(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "override HTTP_PORT")
	return cmd
}

func parseTopicList(spec string) ([]domain.CanonicalTopic, error) {
	if spec == "" {
		return nil, fmt.Errorf("--topics is required")
	}
	var out []domain.CanonicalTopic
	start := 0
	for i := 0; i <= len(spec); i++ {
		if i == len(spec) || spec[i] == ',' {
			piece := spec[start:i]
			start = i + 1
			if piece == "" {
				continue
			}
			t := domain.CanonicalTopic(piece)
			if !t.Valid() {
				return nil, fmt.Errorf("unknown topic %q", piece)
			}
			out = append(out, t)
		}
	}
	return out, nil
}

// taxonomyMaintenanceFn wraps the external taxonomy-maintenance collaborator
// call in the retry+circuit-breaker stack (§4.8 step 2, §9). Returns an
// always-failing function when no endpoint is configured, so
// --with-taxonomy-maintenance surfaces a clear step error rather than
// silently no-oping.
func (a *app) taxonomyMaintenanceFn() func(ctx context.Context) error {
	url := a.cfg.Infra.TaxonomyMaintenanceURL
	if url == "" {
		return func(ctx context.Context) error {
			return fmt.Errorf("TAXONOMY_MAINTENANCE_URL not configured")
		}
	}

	retryCfg, err := config.LoadTaxonomyRetryConfig(a.cfg.Infra.ProvidersConfigPath)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to load taxonomy provider config, using defaults")
		retryCfg = retry.DefaultConfig()
	}
	client := retry.New(taxonomyMaintenanceProvider, retryCfg)

	rps, burst := 2.0, 4
	host := url
	if parsed, err := urlpkg.Parse(url); err == nil && parsed.Host != "" {
		host = parsed.Host
	}
	if pc, err := config.LoadProvidersConfig(a.cfg.Infra.ProvidersConfigPath); err == nil {
		if p, ok := pc.GetProvider(taxonomyMaintenanceProvider); ok {
			rps, burst = float64(p.RPS), p.Burst
		}
	}
	a.limiters.AddProvider(taxonomyMaintenanceProvider, rps, burst)

	return func(ctx context.Context) error {
		if err := a.limiters.Wait(ctx, taxonomyMaintenanceProvider, host); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(ctx, req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return fmt.Errorf("taxonomy maintenance collaborator returned %s", resp.Status)
		}
		return nil
	}
}

func printOpsResult(r ops.Result) {
	fmt.Printf("run_id=%s topics_run=%d topics_skipped=%d stale_venues=%v healthy=%v\n",
		r.RunID, len(r.TopicsRun), len(r.TopicsSkipped), r.StaleQuoteVenues, r.KPI.Healthy)
	fmt.Printf("kpi: suggested=%d confirmed=%d confirmed_24h=%d watchlist=%d\n",
		r.KPI.TotalSuggested, r.KPI.TotalConfirmed, r.KPI.ConfirmedLast24h, r.KPI.WatchlistTotal)
	for topic, k := range r.KPI.PerTopic {
		fmt.Printf("  %s: suggested=%d confirmed=%d rejected=%d\n", topic, k.Suggested, k.Confirmed, k.Rejected)
	}
	for step, d := range r.KPI.ComponentDurations {
		fmt.Printf("  step %-20s %s\n", step, d.Round(time.Millisecond))
	}
	for step, err := range r.StepErrors {
		fmt.Printf("  ✗ %s: %v\n", step, err)
	}
}

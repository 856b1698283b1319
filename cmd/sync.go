package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zdunecki/dnsimple-ddns/pkg/config"
	"github.com/zdunecki/dnsimple-ddns/pkg/hostname"
	"github.com/zdunecki/dnsimple-ddns/pkg/localip"
	"github.com/zdunecki/dnsimple-ddns/pkg/log"
	"github.com/zdunecki/dnsimple-ddns/pkg/updater"
	"github.com/zdunecki/dnsimple-ddns/pkg/zonestore"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the configured hostnames against DNSimple",
	Long: `Discover this machine's local IP address and create or update a DNSimple
A record for each configured hostname. The run succeeds when at least one
hostname could be processed.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if dryRun {
		return runDryRun(cfg)
	}

	store, err := zonestore.NewDNSimple(ctx, cfg.Token, cfg.AccountID, cfg.Sandbox)
	if err != nil {
		return fmt.Errorf("initializing DNSimple client: %w", err)
	}
	engine := updater.New(store)

	if err := syncOnce(ctx, cfg, engine); err != nil {
		if interval == 0 {
			return err
		}
		// In interval mode a failed pass is retried on the next tick.
		log.Logger.Error().Err(err).Msg("sync pass failed")
	}
	if interval == 0 {
		return nil
	}

	log.Logger.Info().Dur("interval", interval).Msg("running continuously")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Logger.Info().Msg("shutting down")
			return nil
		case <-ticker.C:
			if err := syncOnce(ctx, cfg, engine); err != nil {
				log.Logger.Error().Err(err).Msg("sync pass failed")
			}
		}
	}
}

// syncOnce performs one full reconciliation pass, rediscovering the local
// address each time since it can change between passes.
func syncOnce(ctx context.Context, cfg *config.Config, engine *updater.Engine) error {
	logger := log.WithComponent("sync")
	logger.Info().Int("hostnames", len(cfg.Hostnames)).Msg("starting DNS records update")

	target, err := localip.Discover()
	if err != nil {
		return fmt.Errorf("discovering local address: %w", err)
	}

	summary := engine.Sync(ctx, cfg.Hostnames, target)
	for _, r := range summary.Results {
		if r.Outcome == updater.OutcomeFailed {
			logger.Error().Str("hostname", r.Hostname).Str("reason", r.Reason).Msg("hostname failed")
		} else {
			logger.Info().Str("hostname", r.Hostname).Str("outcome", string(r.Outcome)).Msg("hostname processed")
		}
	}

	switch {
	case summary.SuccessCount == summary.TotalCount:
		logger.Info().Int("count", summary.TotalCount).Msg("update completed for all hostnames")
	case summary.OK():
		logger.Warn().
			Int("succeeded", summary.SuccessCount).
			Int("total", summary.TotalCount).
			Msg("update partially completed")
	default:
		return fmt.Errorf("update failed for all %d hostname(s)", summary.TotalCount)
	}
	return nil
}

// runDryRun validates the configured hostnames and reports the discovered
// address without touching any record.
func runDryRun(cfg *config.Config) error {
	logger := log.WithComponent("sync")
	logger.Info().Msg("dry-run mode, no changes will be made")

	target, err := localip.Discover()
	if err != nil {
		return fmt.Errorf("discovering local address: %w", err)
	}

	for _, h := range cfg.Hostnames {
		if hostname.Validate(h) {
			logger.Info().Str("hostname", h).Str("ip", target.String()).Msg("would update")
		} else {
			logger.Error().Str("hostname", h).Msg("invalid hostname format")
		}
	}
	return nil
}

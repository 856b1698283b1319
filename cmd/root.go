package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zdunecki/dnsimple-ddns/pkg/config"
	"github.com/zdunecki/dnsimple-ddns/pkg/log"
)

var (
	// Global flags
	configFile string
	dryRun     bool
	interval   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "dnsimple-ddns",
	Short: "Keep DNSimple DNS records pointed at this machine's local IP",
	Long: `dnsimple-ddns updates DNSimple A records so that one or more hostnames
always point to this machine's local network address.

Configuration comes from the environment (a .env file in the working
directory is picked up automatically) or an optional YAML config file:

  DNSIMPLE_TOKEN       DNSimple API token (required)
  DNSIMPLE_ACCOUNT_ID  Account ID (optional, auto-detected when omitted)
  DNSIMPLE_SANDBOX     Set to 'true' to use the sandbox environment
  HOSTNAMES            Comma-separated hostname list (required), e.g.
                       HOSTNAMES=myhost.example.com,*.example.com
  LOG_LEVEL            debug, info, warn or error (default info)
  LOG_JSON             Set to 'true' for JSON log output`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML config file")

	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes")
	syncCmd.Flags().DurationVar(&interval, "interval", 0, "Rerun continuously at this interval (e.g. 5m); one-shot when unset")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(recordsCmd)

	// Help includes the current configuration so users can see what a run
	// would pick up.
	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		defaultHelp(cmd, args)
		if cmd == rootCmd {
			if cfg, err := config.Load(configFile); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "\nCurrent configuration:\n%s", cfg.Summary())
			}
		}
	})
}

func Execute() error {
	// Bare invocation performs a sync, so the tool works as a cron job
	// without arguments.
	if len(os.Args) == 1 {
		return runSync(syncCmd, nil)
	}
	return rootCmd.Execute()
}

// loadConfig loads and validates configuration, then initializes logging
// from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log.Init(log.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zdunecki/dnsimple-ddns/pkg/config"
	"github.com/zdunecki/dnsimple-ddns/pkg/log"
	"github.com/zdunecki/dnsimple-ddns/pkg/updater"
	"github.com/zdunecki/dnsimple-ddns/pkg/zonestore"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect and manage zone records directly",
}

var recordsListCmd = &cobra.Command{
	Use:   "list <zone>",
	Short: "List all records in a zone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}

		records, err := engine.ListRecords(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%-12s %-6s %-30s %-40s %s\n", "ID", "TYPE", "NAME", "CONTENT", "TTL")
		for _, r := range records {
			name := r.Name
			if name == "" {
				name = "(apex)"
			}
			fmt.Printf("%-12d %-6s %-30s %-40s %d\n", r.ID, r.Type, name, r.Content, r.TTL)
		}
		return nil
	},
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete <zone> <record-id>",
	Short: "Delete a single record from a zone",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid record id %q: %w", args[1], err)
		}

		engine, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}
		return engine.DeleteRecord(cmd.Context(), args[0], id)
	},
}

func init() {
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsDeleteCmd)
}

// newEngine builds an engine from configuration. records subcommands only
// need the token, not the hostname list.
func newEngine(ctx context.Context) (*updater.Engine, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log.Init(log.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	if cfg.Token == "" {
		return nil, errors.New("DNSIMPLE_TOKEN is required")
	}
	store, err := zonestore.NewDNSimple(ctx, cfg.Token, cfg.AccountID, cfg.Sandbox)
	if err != nil {
		return nil, fmt.Errorf("initializing DNSimple client: %w", err)
	}
	return updater.New(store), nil
}

// Package updater reconciles a desired hostname list against the records a
// zone store currently holds, creating or updating A records so every
// hostname points at the target address.
package updater

import (
	"context"
	"net/netip"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zdunecki/dnsimple-ddns/pkg/hostname"
	"github.com/zdunecki/dnsimple-ddns/pkg/log"
	"github.com/zdunecki/dnsimple-ddns/pkg/zonestore"
)

// DefaultTTL is applied to every record this tool creates or updates.
const DefaultTTL = 300

// defaultCallTimeout bounds each individual provider call.
const defaultCallTimeout = 15 * time.Second

// Outcome is the terminal state of a single hostname within a run.
type Outcome string

const (
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeUpdated   Outcome = "updated"
	OutcomeCreated   Outcome = "created"
	OutcomeFailed    Outcome = "failed"
)

// Failure reasons attached to OutcomeFailed results.
const (
	ReasonInvalidHostname = "invalid hostname"
	ReasonZoneRead        = "zone read error"
	ReasonUpdate          = "update error"
	ReasonCreate          = "create error"
)

// Result is the per-hostname outcome of a run.
type Result struct {
	Hostname string
	Outcome  Outcome
	Reason   string // set only when Outcome is OutcomeFailed
}

// Summary aggregates the results of one run.
type Summary struct {
	Results      []Result
	SuccessCount int
	TotalCount   int
}

// OK reports whether the run succeeded overall. One broken hostname must not
// block DNS maintenance for the rest, so any non-failed outcome counts.
func (s Summary) OK() bool {
	return s.SuccessCount > 0
}

// Engine drives reconciliation against a zone store.
type Engine struct {
	store       zonestore.Store
	ttl         int
	callTimeout time.Duration
	logger      zerolog.Logger
}

// New creates an Engine using the default TTL and per-call timeout.
func New(store zonestore.Store) *Engine {
	return &Engine{
		store:       store,
		ttl:         DefaultTTL,
		callTimeout: defaultCallTimeout,
		logger:      log.WithComponent("updater"),
	}
}

// Sync reconciles each hostname in order against target. Hostnames are
// processed independently; a failure records a failed result and moves on.
func (e *Engine) Sync(ctx context.Context, hostnames []string, target netip.Addr) Summary {
	summary := Summary{TotalCount: len(hostnames)}
	for _, h := range hostnames {
		result := e.syncHost(ctx, h, target)
		if result.Outcome != OutcomeFailed {
			summary.SuccessCount++
		}
		summary.Results = append(summary.Results, result)
	}
	return summary
}

func (e *Engine) syncHost(ctx context.Context, host string, target netip.Addr) Result {
	logger := e.logger.With().Str("hostname", host).Logger()
	logger.Info().Msg("processing hostname")

	if !hostname.Validate(host) {
		logger.Error().Msg("invalid hostname format")
		return Result{Hostname: host, Outcome: OutcomeFailed, Reason: ReasonInvalidHostname}
	}

	zone, name := hostname.Split(host)
	if name == "*" || strings.HasPrefix(name, "*.") {
		logger.Info().Str("record", name).Str("zone", zone).Msg("managing wildcard record")
	}

	records, err := e.listRecords(ctx, zone)
	if err != nil {
		logger.Error().Err(err).Str("zone", zone).Msg("could not retrieve existing records")
		return Result{Hostname: host, Outcome: OutcomeFailed, Reason: ReasonZoneRead}
	}

	existing, found := findRecord(records, name)
	content := target.String()

	switch {
	case found && existing.Content == content:
		logger.Info().Str("ip", content).Msg("record already current")
		return Result{Hostname: host, Outcome: OutcomeUnchanged}

	case found:
		logger.Info().Str("old", existing.Content).Str("new", content).Msg("record content differs, updating")
		if err := e.updateRecord(ctx, zone, existing.ID, content); err != nil {
			logger.Error().Err(err).Msg("update failed")
			return Result{Hostname: host, Outcome: OutcomeFailed, Reason: ReasonUpdate}
		}
		logger.Info().Str("ip", content).Msg("record updated")
		return Result{Hostname: host, Outcome: OutcomeUpdated}

	default:
		if err := e.createRecord(ctx, zone, name, content); err != nil {
			logger.Error().Err(err).Msg("create failed")
			return Result{Hostname: host, Outcome: OutcomeFailed, Reason: ReasonCreate}
		}
		logger.Info().Str("ip", content).Msg("record created")
		return Result{Hostname: host, Outcome: OutcomeCreated}
	}
}

// findRecord returns the first A record whose name matches exactly. Provider
// order decides when a zone holds duplicate same-name records.
func findRecord(records []zonestore.Record, name string) (zonestore.Record, bool) {
	for _, r := range records {
		if r.Type == zonestore.TypeA && r.Name == name {
			return r, true
		}
	}
	return zonestore.Record{}, false
}

func (e *Engine) listRecords(ctx context.Context, zone string) ([]zonestore.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	return e.store.ListRecords(ctx, zone)
}

func (e *Engine) createRecord(ctx context.Context, zone, name, content string) error {
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	_, err := e.store.CreateRecord(ctx, zone, name, content, e.ttl)
	return err
}

func (e *Engine) updateRecord(ctx context.Context, zone string, id int64, content string) error {
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	_, err := e.store.UpdateRecord(ctx, zone, id, content, e.ttl)
	return err
}

// ListRecords exposes the store's record listing with the engine's call
// timeout applied.
func (e *Engine) ListRecords(ctx context.Context, zone string) ([]zonestore.Record, error) {
	return e.listRecords(ctx, zone)
}

// DeleteRecord removes a single record. The reconciliation loop never deletes
// records; this exists for explicit operator use.
func (e *Engine) DeleteRecord(ctx context.Context, zone string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	if err := e.store.DeleteRecord(ctx, zone, id); err != nil {
		return err
	}
	e.logger.Info().Str("zone", zone).Int64("record_id", id).Msg("record deleted")
	return nil
}

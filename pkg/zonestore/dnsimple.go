package zonestore

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"github.com/dnsimple/dnsimple-go/dnsimple"
	"golang.org/x/oauth2"
)

const sandboxBaseURL = "https://api.sandbox.dnsimple.com"

// recordsPerPage is the page size used when walking a zone's record list.
const recordsPerPage = 100

// DNSimple implements Store on top of the DNSimple v2 API.
type DNSimple struct {
	client    *dnsimple.Client
	accountID string
}

// NewDNSimple builds an authenticated DNSimple store. When accountID is empty
// the account is discovered once via the identity endpoint. sandbox switches
// the client to the sandbox environment.
func NewDNSimple(ctx context.Context, token, accountID string, sandbox bool) (*DNSimple, error) {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	httpClient.Timeout = 30 * time.Second

	client := dnsimple.NewClient(httpClient)
	if sandbox {
		client.BaseURL = sandboxBaseURL
	}

	store := &DNSimple{client: client, accountID: accountID}
	if store.accountID == "" {
		whoami, err := client.Identity.Whoami(ctx)
		if err != nil {
			return nil, fmt.Errorf("dnsimple: discovering account id: %w", err)
		}
		if whoami.Data.Account == nil {
			return nil, fmt.Errorf("dnsimple: token is not account-scoped, set DNSIMPLE_ACCOUNT_ID")
		}
		store.accountID = strconv.FormatInt(whoami.Data.Account.ID, 10)
	}
	return store, nil
}

// newDNSimpleForTest builds a store against an arbitrary base URL with an
// explicit account, bypassing identity discovery.
func newDNSimpleForTest(httpClient *http.Client, baseURL, accountID string) *DNSimple {
	client := dnsimple.NewClient(httpClient)
	client.BaseURL = baseURL
	return &DNSimple{client: client, accountID: accountID}
}

// AccountID returns the resolved account identifier.
func (s *DNSimple) AccountID() string { return s.accountID }

func (s *DNSimple) ListRecords(ctx context.Context, zone string) ([]Record, error) {
	var records []Record
	page := 1
	perPage := recordsPerPage
	for {
		resp, err := s.client.Zones.ListRecords(ctx, s.accountID, zone, &dnsimple.ZoneRecordListOptions{
			ListOptions: dnsimple.ListOptions{Page: &page, PerPage: &perPage},
		})
		if err != nil {
			return nil, fmt.Errorf("dnsimple: listing records for zone %s: %w", zone, err)
		}
		for _, r := range resp.Data {
			records = append(records, fromZoneRecord(r))
		}
		if resp.Pagination == nil || resp.Pagination.CurrentPage >= resp.Pagination.TotalPages {
			return records, nil
		}
		page++
	}
}

func (s *DNSimple) CreateRecord(ctx context.Context, zone, name, content string, ttl int) (Record, error) {
	if _, err := netip.ParseAddr(content); err != nil {
		return Record{}, fmt.Errorf("dnsimple: record content %q is not an IP address: %w", content, err)
	}

	resp, err := s.client.Zones.CreateRecord(ctx, s.accountID, zone, dnsimple.ZoneRecordAttributes{
		Name:    &name,
		Type:    TypeA,
		Content: content,
		TTL:     ttl,
	})
	if err != nil {
		return Record{}, fmt.Errorf("dnsimple: creating record %q in zone %s: %w", name, zone, err)
	}
	return fromZoneRecord(*resp.Data), nil
}

func (s *DNSimple) UpdateRecord(ctx context.Context, zone string, id int64, content string, ttl int) (Record, error) {
	if _, err := netip.ParseAddr(content); err != nil {
		return Record{}, fmt.Errorf("dnsimple: record content %q is not an IP address: %w", content, err)
	}

	resp, err := s.client.Zones.UpdateRecord(ctx, s.accountID, zone, id, dnsimple.ZoneRecordAttributes{
		Content: content,
		TTL:     ttl,
	})
	if err != nil {
		return Record{}, fmt.Errorf("dnsimple: updating record %d in zone %s: %w", id, zone, err)
	}
	return fromZoneRecord(*resp.Data), nil
}

func (s *DNSimple) DeleteRecord(ctx context.Context, zone string, id int64) error {
	if _, err := s.client.Zones.DeleteRecord(ctx, s.accountID, zone, id); err != nil {
		return fmt.Errorf("dnsimple: deleting record %d from zone %s: %w", id, zone, err)
	}
	return nil
}

func fromZoneRecord(r dnsimple.ZoneRecord) Record {
	return Record{
		ID:      r.ID,
		Name:    r.Name,
		Type:    r.Type,
		Content: r.Content,
		TTL:     r.TTL,
	}
}

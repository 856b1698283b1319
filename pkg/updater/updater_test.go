package updater

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zdunecki/dnsimple-ddns/pkg/zonestore"
)

// fakeStore is an in-memory zonestore.Store with per-operation call counters
// and optional injected failures.
type fakeStore struct {
	records map[string][]zonestore.Record
	nextID  int64

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int

	listErr   error
	createErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string][]zonestore.Record), nextID: 1}
}

func (f *fakeStore) ListRecords(_ context.Context, zone string) ([]zonestore.Record, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records[zone], nil
}

func (f *fakeStore) CreateRecord(_ context.Context, zone, name, content string, ttl int) (zonestore.Record, error) {
	f.createCalls++
	if f.createErr != nil {
		return zonestore.Record{}, f.createErr
	}
	r := zonestore.Record{ID: f.nextID, Name: name, Type: zonestore.TypeA, Content: content, TTL: ttl}
	f.nextID++
	f.records[zone] = append(f.records[zone], r)
	return r, nil
}

func (f *fakeStore) UpdateRecord(_ context.Context, zone string, id int64, content string, ttl int) (zonestore.Record, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return zonestore.Record{}, f.updateErr
	}
	for i, r := range f.records[zone] {
		if r.ID == id {
			f.records[zone][i].Content = content
			f.records[zone][i].TTL = ttl
			return f.records[zone][i], nil
		}
	}
	return zonestore.Record{}, errors.New("record not found")
}

func (f *fakeStore) DeleteRecord(_ context.Context, zone string, id int64) error {
	f.deleteCalls++
	for i, r := range f.records[zone] {
		if r.ID == id {
			f.records[zone] = append(f.records[zone][:i], f.records[zone][i+1:]...)
			return nil
		}
	}
	return errors.New("record not found")
}

var target = netip.MustParseAddr("192.168.1.50")

func TestSyncCreatesMissingRecord(t *testing.T) {
	store := newFakeStore()
	engine := New(store)

	summary := engine.Sync(context.Background(), []string{"api.example.com"}, target)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, OutcomeCreated, summary.Results[0].Outcome)
	assert.True(t, summary.OK())

	records := store.records["example.com"]
	require.Len(t, records, 1)
	assert.Equal(t, "api", records[0].Name)
	assert.Equal(t, "192.168.1.50", records[0].Content)
	assert.Equal(t, DefaultTTL, records[0].TTL)
}

func TestSyncCreatesApexRecord(t *testing.T) {
	store := newFakeStore()
	engine := New(store)

	summary := engine.Sync(context.Background(), []string{"example.com"}, target)

	assert.Equal(t, OutcomeCreated, summary.Results[0].Outcome)
	records := store.records["example.com"]
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Name)
}

func TestSyncUpdatesStaleRecord(t *testing.T) {
	store := newFakeStore()
	store.records["example.com"] = []zonestore.Record{
		{ID: 7, Name: "api", Type: zonestore.TypeA, Content: "10.0.0.1", TTL: 300},
	}
	engine := New(store)

	summary := engine.Sync(context.Background(), []string{"api.example.com"}, target)

	assert.Equal(t, OutcomeUpdated, summary.Results[0].Outcome)
	assert.Equal(t, 1, store.updateCalls)
	assert.Equal(t, 0, store.createCalls)
	assert.Equal(t, "192.168.1.50", store.records["example.com"][0].Content)
}

func TestSyncSkipsCurrentRecord(t *testing.T) {
	store := newFakeStore()
	store.records["example.com"] = []zonestore.Record{
		{ID: 7, Name: "api", Type: zonestore.TypeA, Content: "192.168.1.50", TTL: 300},
	}
	engine := New(store)

	summary := engine.Sync(context.Background(), []string{"api.example.com"}, target)

	assert.Equal(t, OutcomeUnchanged, summary.Results[0].Outcome)
	assert.Equal(t, 0, store.updateCalls, "no update call when content already matches")
	assert.Equal(t, 0, store.createCalls)
}

func TestSyncIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.records["example.com"] = []zonestore.Record{
		{ID: 1, Name: "old", Type: zonestore.TypeA, Content: "10.0.0.1", TTL: 300},
		{ID: 2, Name: "api", Type: zonestore.TypeA, Content: "10.0.0.1", TTL: 300},
	}
	engine := New(store)
	hostnames := []string{"api.example.com", "new.example.com"}

	first := engine.Sync(context.Background(), hostnames, target)
	assert.Equal(t, OutcomeUpdated, first.Results[0].Outcome)
	assert.Equal(t, OutcomeCreated, first.Results[1].Outcome)

	second := engine.Sync(context.Background(), hostnames, target)
	for _, r := range second.Results {
		assert.Equal(t, OutcomeUnchanged, r.Outcome, "hostname %s", r.Hostname)
	}
	assert.Equal(t, 1, store.createCalls)
	assert.Equal(t, 1, store.updateCalls)
}

func TestSyncPartialSuccess(t *testing.T) {
	store := newFakeStore()
	engine := New(store)

	summary := engine.Sync(context.Background(), []string{
		"not_valid_.example.com",
		"a.example.com",
		"b.example.com",
	}, target)

	assert.Equal(t, 3, summary.TotalCount)
	assert.Equal(t, 2, summary.SuccessCount)
	assert.True(t, summary.OK())

	assert.Equal(t, OutcomeFailed, summary.Results[0].Outcome)
	assert.Equal(t, ReasonInvalidHostname, summary.Results[0].Reason)
	assert.Equal(t, OutcomeCreated, summary.Results[1].Outcome)
	assert.Equal(t, OutcomeCreated, summary.Results[2].Outcome)
}

func TestSyncTotalFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("api unreachable")
	engine := New(store)

	summary := engine.Sync(context.Background(), []string{
		"a.example.com",
		"b.example.com",
		"bad..hostname",
	}, target)

	assert.Equal(t, 0, summary.SuccessCount)
	assert.False(t, summary.OK())
	assert.Equal(t, ReasonZoneRead, summary.Results[0].Reason)
	assert.Equal(t, ReasonZoneRead, summary.Results[1].Reason)
	assert.Equal(t, ReasonInvalidHostname, summary.Results[2].Reason)
}

func TestSyncZoneReadFailureDoesNotAbortBatch(t *testing.T) {
	store := newFakeStore()
	engine := New(store)

	// First hostname fails its zone read, second hostname still proceeds.
	store.listErr = errors.New("transient")
	first := engine.syncHost(context.Background(), "a.example.com", target)
	assert.Equal(t, OutcomeFailed, first.Outcome)
	assert.Equal(t, ReasonZoneRead, first.Reason)

	store.listErr = nil
	second := engine.syncHost(context.Background(), "b.example.com", target)
	assert.Equal(t, OutcomeCreated, second.Outcome)
}

func TestSyncCreateFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("boom")
	engine := New(store)

	summary := engine.Sync(context.Background(), []string{"api.example.com"}, target)

	assert.Equal(t, OutcomeFailed, summary.Results[0].Outcome)
	assert.Equal(t, ReasonCreate, summary.Results[0].Reason)
}

func TestSyncUpdateFailure(t *testing.T) {
	store := newFakeStore()
	store.records["example.com"] = []zonestore.Record{
		{ID: 7, Name: "api", Type: zonestore.TypeA, Content: "10.0.0.1", TTL: 300},
	}
	store.updateErr = errors.New("boom")
	engine := New(store)

	summary := engine.Sync(context.Background(), []string{"api.example.com"}, target)

	assert.Equal(t, OutcomeFailed, summary.Results[0].Outcome)
	assert.Equal(t, ReasonUpdate, summary.Results[0].Reason)
}

func TestSyncPreservesInputOrder(t *testing.T) {
	store := newFakeStore()
	engine := New(store)
	hostnames := []string{"c.example.com", "a.example.com", "b.example.com"}

	summary := engine.Sync(context.Background(), hostnames, target)

	require.Len(t, summary.Results, 3)
	for i, h := range hostnames {
		assert.Equal(t, h, summary.Results[i].Hostname)
	}
}

func TestFindRecordFirstMatchWins(t *testing.T) {
	records := []zonestore.Record{
		{ID: 1, Name: "api", Type: "TXT", Content: "ignored"},
		{ID: 2, Name: "api", Type: zonestore.TypeA, Content: "10.0.0.1"},
		{ID: 3, Name: "api", Type: zonestore.TypeA, Content: "10.0.0.2"},
	}

	found, ok := findRecord(records, "api")
	require.True(t, ok)
	assert.Equal(t, int64(2), found.ID, "first A record in provider order wins")
}

func TestFindRecordExactNameMatch(t *testing.T) {
	records := []zonestore.Record{
		{ID: 1, Name: "API", Type: zonestore.TypeA, Content: "10.0.0.1"},
		{ID: 2, Name: "api2", Type: zonestore.TypeA, Content: "10.0.0.1"},
	}

	_, ok := findRecord(records, "api")
	assert.False(t, ok, "name match is exact and case-sensitive")
}

func TestDeleteRecordNotCalledBySync(t *testing.T) {
	store := newFakeStore()
	store.records["example.com"] = []zonestore.Record{
		{ID: 7, Name: "api", Type: zonestore.TypeA, Content: "10.0.0.1", TTL: 300},
		{ID: 8, Name: "stale", Type: zonestore.TypeA, Content: "10.0.0.1", TTL: 300},
	}
	engine := New(store)

	engine.Sync(context.Background(), []string{"api.example.com"}, target)
	assert.Equal(t, 0, store.deleteCalls, "reconciliation never deletes records")

	require.NoError(t, engine.DeleteRecord(context.Background(), "example.com", 8))
	assert.Equal(t, 1, store.deleteCalls)
	assert.Len(t, store.records["example.com"], 1)
}

func TestSyncWildcardHostnames(t *testing.T) {
	store := newFakeStore()
	engine := New(store)

	summary := engine.Sync(context.Background(), []string{"*.example.com", "*.sub.example.com"}, target)

	assert.Equal(t, OutcomeCreated, summary.Results[0].Outcome)
	assert.Equal(t, OutcomeCreated, summary.Results[1].Outcome)

	records := store.records["example.com"]
	require.Len(t, records, 2)
	assert.Equal(t, "*", records[0].Name)
	assert.Equal(t, "*.sub", records[1].Name)
}

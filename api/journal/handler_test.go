package journal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corejournal "github.com/kilianp07/autosampler/core/journal"
)

type memStore struct {
	recs []corejournal.Record
	err  error
}

func (m *memStore) Append(_ context.Context, r corejournal.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(_ context.Context, q corejournal.Query) ([]corejournal.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	var res []corejournal.Record
	for _, r := range m.recs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	if q.Limit > 0 && len(res) > q.Limit {
		res = res[len(res)-q.Limit:]
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func get(h http.Handler, url, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlerAuthAndFilters(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &memStore{}
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, corejournal.Record{Timestamp: t0, VesselID: "ship", ExperimentID: "goo", Action: "run"}))
	require.NoError(t, store.Append(ctx, corejournal.Record{Timestamp: t0.Add(time.Minute), VesselID: "ship", ExperimentID: "goo", Action: "transfer"}))
	require.NoError(t, store.Append(ctx, corejournal.Record{Timestamp: t0.Add(2 * time.Minute), VesselID: "probe", ExperimentID: "temp", Action: "run"}))
	h := NewHandler(store, "tok")

	assert.Equal(t, http.StatusUnauthorized, get(h, Path, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(h, Path, "nope").Code)

	rr := get(h, Path+"?vessel_id=ship&action=run", "tok")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var recs []corejournal.Record
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "goo", recs[0].ExperimentID)

	rr = get(h, Path+"?start="+t0.Add(30*time.Second).Format(time.RFC3339)+"&limit=1", "tok")
	require.Equal(t, http.StatusOK, rr.Code)
	recs = nil
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "probe", recs[0].VesselID)
}

func TestHandlerErrors(t *testing.T) {
	h := NewHandler(&memStore{err: errors.New("disk gone")}, "")
	assert.Equal(t, http.StatusInternalServerError, get(h, Path, "").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, Path+"?limit=x", "").Code)

	req := httptest.NewRequest(http.MethodPost, Path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = get(NewHandler(&memStore{}, ""), Path, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

// Package journal exposes the action journal over HTTP.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	corejournal "github.com/kilianp07/autosampler/core/journal"
)

// Path is where NewHandler is mounted by Serve.
const Path = "/api/journal"

// NewHandler returns an HTTP handler answering GET requests with the records
// matching the vessel_id, experiment_id, action, start, end and limit query
// parameters. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewHandler(store corejournal.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		v := r.URL.Query()
		q := corejournal.Query{
			VesselID:     v.Get("vessel_id"),
			ExperimentID: v.Get("experiment_id"),
			Action:       v.Get("action"),
		}
		if s := v.Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := v.Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		if s := v.Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			q.Limit = n
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []corejournal.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// Serve exposes the handler on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, store corejournal.Store, token string) error {
	mux := http.NewServeMux()
	mux.Handle(Path, NewHandler(store, token))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Package httpapi serves token reports over HTTP.
//
// Routes:
//
//	GET /healthz
//	GET /v1/categories
//	GET /v1/tokens?target=...&format=json|css|summary&refresh=true
//	GET /v1/tokens/{category}?target=...&limit=N
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gnana997/uitokens/pkg/export"
	"github.com/gnana997/uitokens/pkg/service"
	"github.com/gnana997/uitokens/pkg/tokens"
)

type api struct {
	svc *service.Service
	log *slog.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(svc *service.Service, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	a := &api{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/categories", a.categories)
		r.Get("/tokens", a.report)
		r.Get("/tokens/{category}", a.category)
	})
	return r
}

// ListenAndServe serves h on addr until ctx is done, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("http api listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("httpapi: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("http api shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type categoryInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Color bool   `json:"color"`
}

type tokenUsage struct {
	Value string  `json:"value"`
	Count int     `json:"count"`
	Ratio float64 `json:"ratio"`
}

type categoryResponse struct {
	Target   string       `json:"target"`
	Category string       `json:"category"`
	Title    string       `json:"title"`
	Tokens   []tokenUsage `json:"tokens"`
}

func (a *api) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "cache": a.svc.Stats()})
}

func (a *api) categories(w http.ResponseWriter, _ *http.Request) {
	cats := tokens.Categories()
	out := make([]categoryInfo, len(cats))
	for i, c := range cats {
		out[i] = categoryInfo{Name: string(c), Title: export.Title(c), Color: c.IsColor()}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) report(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		writeError(w, http.StatusBadRequest, errors.New("target is required"))
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	report, err := a.svc.Extract(r.Context(), target, refresh)
	if err != nil {
		a.fail(w, target, err)
		return
	}
	out, err := export.Render(report, format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (a *api) category(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		writeError(w, http.StatusBadRequest, errors.New("target is required"))
		return
	}
	c, err := tokens.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	limit := queryInt(r, "limit", 0)
	if limit < 0 {
		writeError(w, http.StatusBadRequest, errors.New("limit must not be negative"))
		return
	}

	list, err := a.svc.Tokens(r.Context(), target, c, limit)
	if err != nil {
		a.fail(w, target, err)
		return
	}

	resp := categoryResponse{
		Target:   target,
		Category: string(c),
		Title:    export.Title(c),
		Tokens:   make([]tokenUsage, 0, len(list)),
	}
	for _, u := range export.Usages(list) {
		resp.Tokens = append(resp.Tokens, tokenUsage{Value: u.Value, Count: u.Count, Ratio: u.Ratio})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) fail(w http.ResponseWriter, target string, err error) {
	switch {
	case errors.Is(err, tokens.ErrUnreachableTarget):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, tokens.ErrUnknownCategory):
		writeError(w, http.StatusNotFound, err)
	default:
		a.log.Error("extraction failed", "target", target, "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func contentType(f export.Format) string {
	switch f {
	case export.FormatCSS:
		return "text/css; charset=utf-8"
	case export.FormatSummary:
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// Package web hosts the night-mode page. Every request replays the page lifecycle on a
// freshly parsed copy of the authored markup: page-ready runs Initialize, the toggle
// form runs Initialize followed by OnActivate.
package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/nite/app/page"
	"github.com/umputun/nite/app/toggle"
)

// Config holds web handler configuration.
type Config struct {
	BaseURL string
	Markup  []byte // authored page, embedded index page if empty
}

// Handler handles web UI requests.
type Handler struct {
	store   toggle.Store
	markup  []byte
	baseURL string

	mu sync.Mutex // page events run one at a time
}

// New creates a new web handler. The markup is checked up front, a page without the
// toggle control can't be initialized and is rejected here.
func New(st toggle.Store, cfg Config) (*Handler, error) {
	markup := cfg.Markup
	if len(markup) == 0 {
		markup = page.IndexHTML()
	}

	doc, err := page.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to load markup: %w", err)
	}
	if !doc.HasElement(toggle.ControlID) {
		return nil, fmt.Errorf("invalid markup: %w: #%s", toggle.ErrControlNotFound, toggle.ControlID)
	}

	return &Handler{store: st, markup: markup, baseURL: cfg.BaseURL}, nil
}

// Register registers web UI routes on the given router.
func (h *Handler) Register(r *routegroup.Bundle) {
	r.HandleFunc("GET /{$}", h.handleIndex)
	r.HandleFunc("POST /web/nite", h.handleToggle)
	r.HandleFunc("GET /web/nite", h.handleMode)
}

// handleIndex renders the page after the page-ready initialization.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, ctrl, err := h.load(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to initialize page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, doc, ctrl)
}

// handleToggle is the activation gesture, it flips the preference and sends the browser
// back to the page.
func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, ctrl, err := h.load(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to initialize page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := ctrl.OnActivate(r.Context()); err != nil {
		log.Printf("[ERROR] failed to toggle: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	log.Printf("[INFO] nite mode %s", ctrl.Mode())

	// htmx clients swap in the updated page, plain forms follow the redirect
	if r.Header.Get("HX-Request") == "true" {
		h.render(w, doc, ctrl)
		return
	}
	http.Redirect(w, r, h.url("/"), http.StatusSeeOther)
}

// handleMode returns the stored preference as json.
func (h *Handler) handleMode(w http.ResponseWriter, r *http.Request) {
	mode, err := toggle.Stored(r.Context(), h.store)
	if err != nil {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusInternalServerError, err, "can't read mode")
		return
	}
	rest.RenderJSON(w, rest.JSON{"mode": mode.String()})
}

// load parses the authored markup and runs the page-ready initialization on it.
func (h *Handler) load(ctx context.Context) (*page.Document, *toggle.Controller, error) {
	doc, err := page.Parse(bytes.NewReader(h.markup))
	if err != nil {
		return nil, nil, fmt.Errorf("parse markup: %w", err)
	}
	ctrl := toggle.New(h.store, doc)
	if err := ctrl.Initialize(ctx); err != nil {
		return nil, nil, fmt.Errorf("initialize: %w", err)
	}
	return doc, ctrl, nil
}

func (h *Handler) render(w http.ResponseWriter, doc *page.Document, ctrl *toggle.Controller) {
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		log.Printf("[ERROR] failed to render page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Nite-Mode", ctrl.Mode().String())
	_, _ = w.Write(buf.Bytes())
}

// url returns a URL path with the base URL prefix.
func (h *Handler) url(path string) string {
	return h.baseURL + path
}

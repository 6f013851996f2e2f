package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MEKXH/nudge/internal/audit"
	"github.com/MEKXH/nudge/internal/store"
	"github.com/google/uuid"
)

// MaxRequestBody caps POST bodies; larger or unparseable bodies produce a
// validation error rather than being partially processed.
const MaxRequestBody = 64 * 1024

// Notifier renders a platform notification for a newly created request.
// Implementations must not block the request path; dispatch is already
// asynchronous and best-effort.
type Notifier interface {
	Notify(question, agent, url string)
}

// Options carries the handler's optional collaborators.
type Options struct {
	Notifier Notifier
	Audit    *audit.Writer
	Shutdown func()
}

type handler struct {
	store *store.Store
	opts  Options
	url   string
}

// NewHandler builds the HTTP handler for the broker API and the embedded
// web UI. url is the externally reachable base URL, used in notifications.
func NewHandler(st *store.Store, url string, opts Options) http.Handler {
	h := &handler{store: st, opts: opts, url: url}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleRoot)
	mux.HandleFunc("/api/pending", h.handlePending)
	mux.HandleFunc("/api/status/", h.handleStatus)
	mux.HandleFunc("/api/health", h.handleHealth)
	mux.HandleFunc("/api/ask", h.handleAsk)
	mux.HandleFunc("/api/answer", h.handleAnswer)
	mux.HandleFunc("/api/shutdown", h.handleShutdown)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			h.handlePreflight(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// corsOrigin returns the caller's declared origin only when it is a
// loopback host at any port; any other origin gets no CORS annotation, so
// remote pages cannot complete cross-origin calls against the broker.
func corsOrigin(r *http.Request) string {
	origin := r.Header.Get("Origin")
	if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
		return origin
	}
	return ""
}

func (h *handler) handlePreflight(w http.ResponseWriter, r *http.Request) {
	if origin := corsOrigin(r); origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
	}
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, r, getRequestID(r), http.StatusNotFound, "not_found", "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, r, getRequestID(r), http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(webUI)
}

func (h *handler) handlePending(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)
	if r.Method != http.MethodGet {
		writeError(w, r, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	pending := h.store.Pending()
	if pending == nil {
		pending = []store.Request{}
	}
	writeJSON(w, r, http.StatusOK, pending)
}

func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)
	if r.Method != http.MethodGet {
		writeError(w, r, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/status/")
	req, ok := h.store.Get(id)
	if !ok {
		writeError(w, r, requestID, http.StatusNotFound, "not_found", "request not found")
		return
	}
	writeJSON(w, r, http.StatusOK, req)
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)
	if r.Method != http.MethodGet {
		writeError(w, r, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)
	if r.Method != http.MethodPost {
		writeError(w, r, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var body struct {
		Question    string `json:"question"`
		Context     string `json:"context"`
		Agent       string `json:"agent"`
		Task        string `json:"task"`
		RequestType string `json:"request_type"`
		Command     string `json:"command"`
	}
	if !decodeBody(w, r, requestID, &body) {
		return
	}

	reqType := store.RequestType(body.RequestType)
	if reqType != "" && reqType != store.TypeQuestion && reqType != store.TypePermission {
		writeError(w, r, requestID, http.StatusBadRequest, "bad_request", "request_type must be question or permission")
		return
	}

	req, err := h.store.Create(store.CreateInput{
		Question: body.Question,
		Context:  body.Context,
		Agent:    body.Agent,
		Task:     body.Task,
		Type:     reqType,
		Command:  body.Command,
	})
	switch {
	case errors.Is(err, store.ErrCapacity):
		writeError(w, r, requestID, http.StatusTooManyRequests, "too_many_pending", err.Error())
		return
	case err != nil:
		writeError(w, r, requestID, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	h.audit(audit.Event{Type: audit.EventRequestCreated, RequestID: req.ID, Agent: req.Agent})
	if h.opts.Notifier != nil {
		go h.opts.Notifier.Notify(req.Question, req.Agent, h.url)
	}

	slog.Info("request created", "request_id", req.ID, "agent", req.Agent, "type", req.Type)
	writeJSON(w, r, http.StatusOK, map[string]any{"id": req.ID})
}

func (h *handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)
	if r.Method != http.MethodPost {
		writeError(w, r, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var body struct {
		ID     string `json:"id"`
		Answer string `json:"answer"`
	}
	if !decodeBody(w, r, requestID, &body) {
		return
	}
	if body.ID == "" || body.Answer == "" {
		writeError(w, r, requestID, http.StatusBadRequest, "bad_request", "id and answer are required")
		return
	}

	if !h.store.Answer(body.ID, body.Answer) {
		writeError(w, r, requestID, http.StatusNotFound, "not_found", "request not found or already answered")
		return
	}

	h.audit(audit.Event{Type: audit.EventRequestAnswered, RequestID: body.ID})
	slog.Info("request answered", "request_id", body.ID)
	writeJSON(w, r, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *handler) handleShutdown(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)
	if r.Method != http.MethodPost {
		writeError(w, r, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	// The response races with process exit and may never reach the caller.
	writeJSON(w, r, http.StatusOK, map[string]any{"status": "shutting down"})
	if h.opts.Shutdown != nil {
		go h.opts.Shutdown()
	}
}

func (h *handler) audit(event audit.Event) {
	if h.opts.Audit == nil {
		return
	}
	event.Time = time.Now().UTC()
	if err := h.opts.Audit.Append(event); err != nil {
		slog.Warn("failed to append audit event", "type", event.Type, "error", err)
	}
}

// decodeBody reads a size-capped JSON body into v. On failure it writes a
// validation error and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, requestID string, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, requestID, http.StatusBadRequest, "bad_request", "invalid json request")
		return false
	}
	return true
}

func getRequestID(r *http.Request) string {
	rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
	if rid != "" {
		return rid
	}
	return uuid.NewString()
}

func writeError(w http.ResponseWriter, r *http.Request, requestID string, status int, code, message string) {
	writeJSON(w, r, status, map[string]any{
		"code":       code,
		"message":    message,
		"request_id": requestID,
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if origin := corsOrigin(r); origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package httpapi exposes the bridge over HTTP: webhook ingestion for the
// upstream provider, polling/detail/status for the downstream partner.
// Handlers are thin adapters; all order logic lives behind them.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mrussa/order-bridge/internal/canonical"
	"github.com/mrussa/order-bridge/internal/ingest"
	"github.com/mrussa/order-bridge/internal/poll"
	"github.com/mrussa/order-bridge/internal/respond"
	"github.com/mrussa/order-bridge/internal/status"
	"github.com/mrussa/order-bridge/internal/store"
)

const maxBodyBytes = 1 << 20

type Ingestor interface {
	Ingest(ctx context.Context, raw any) (string, error)
}

type API struct {
	store   *store.Store
	ingest  Ingestor
	token   string
	logf    func(string, ...any)
	version string
}

func New(st *store.Store, ing Ingestor, token string, logf func(string, ...any), version string) *API {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &API{
		store:   st,
		ingest:  ing,
		token:   token,
		logf:    logf,
		version: version,
	}
}

func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/webhook/orders", a.requireAuth(a.handleWebhook))
	mux.HandleFunc("/api/parceiro/polling", a.requireAuth(a.handlePolling))
	mux.HandleFunc("/api/parceiro/order/", a.requireAuth(a.handleOrder))
	mux.HandleFunc("/admin/reset", a.requireAuth(a.handleReset))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respond.ErrorWithID(w, http.StatusNotFound, "not_found", "not found", RequestID(r))
	})

	return WithRequestID(a.withRecover(mux))
}

// withRecover keeps a panicking handler from taking the process down; the
// store is never left mid-mutation because its operations are atomic.
func (a *API) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				a.logf("[HTTP] panic on %s %s: %v", r.Method, r.URL.Path, p)
				respond.Internal(w, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
		respond.Error(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	pending, processed := a.store.Counts()
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"pending":    pending,
		"processed":  processed,
		"version":    a.version,
		"request_id": RequestID(r),
	})
}

type webhookResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}

func (a *API) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respond.Error(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var raw any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&raw); err != nil {
		respond.BadRequest(w, "body is not valid JSON")
		return
	}

	orderID, err := a.ingest.Ingest(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrMalformed):
			respond.BadRequest(w, "payload is not an order document")
		case errors.Is(err, canonical.ErrMissingID):
			respond.BadRequest(w, "order id missing")
		case errors.Is(err, ingest.ErrUpstream):
			a.logf("[HTTP] webhook enrichment failed: %v", err)
			respond.BadGateway(w, "upstream detail fetch failed")
		default:
			a.logf("[HTTP] webhook ingest failed: %v", err)
			respond.Internal(w, "internal error")
		}
		return
	}

	respond.JSON(w, http.StatusOK, webhookResponse{
		Success: true,
		OrderID: orderID,
		Message: "order received",
	})
}

type pollingResponse struct {
	Items        []poll.Summary `json:"items"`
	StatusCode   int            `json:"statusCode"`
	ReasonPhrase *string        `json:"reasonPhrase"`
}

func (a *API) handlePolling(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		respond.Error(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	items := poll.BuildItems(a.store.ListPending())
	respond.JSON(w, http.StatusOK, pollingResponse{Items: items, StatusCode: 0})
}

type detailResponse struct {
	Item         *canonical.Order `json:"item"`
	StatusCode   int              `json:"statusCode"`
	ReasonPhrase *string          `json:"reasonPhrase"`
}

func (a *API) handleOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/parceiro/order/")
	if i := strings.IndexByte(id, '/'); i >= 0 {
		id = id[:i]
	}
	if id == "" || len(id) > 100 {
		respond.BadRequest(w, "bad order id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.handleDetail(w, r, id)
	case http.MethodPost:
		a.handleStatus(w, r, id)
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		respond.Error(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (a *API) handleDetail(w http.ResponseWriter, r *http.Request, id string) {
	rec, moved, err := a.store.TakeForDetail(id)
	if err != nil {
		reason := "order not found"
		respond.JSON(w, http.StatusNotFound, detailResponse{StatusCode: 1, ReasonPhrase: &reason})
		return
	}
	if moved {
		a.logf("[HTTP] order %s claimed by detail fetch", id)
	}
	respond.JSON(w, http.StatusOK, detailResponse{Item: &rec.Order, StatusCode: 0})
}

type statusResponse struct {
	Success   bool   `json:"success"`
	OrderID   string `json:"orderId"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updatedAt"`
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req status.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respond.BadRequest(w, "body is not valid JSON")
		return
	}

	rec, err := status.Update(a.store, id, req)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrInvalid):
			respond.BadRequest(w, "status is required")
		case errors.Is(err, store.ErrNotFound):
			respond.NotFound(w, "order not found")
		default:
			a.logf("[HTTP] status update failed id=%s err=%v", id, err)
			respond.Internal(w, "internal error")
		}
		return
	}

	respond.JSON(w, http.StatusOK, statusResponse{
		Success:   true,
		OrderID:   id,
		Status:    rec.Status.Status,
		UpdatedAt: rec.Status.UpdatedAt,
	})
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respond.Error(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	a.store.Clear()
	a.logf("[HTTP] store cleared")
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "store cleared"})
}

// Package ingest runs the shared ingestion pipeline: envelope extraction,
// optional upstream enrichment, normalization, store insertion. Both the
// webhook handler and the Kafka consumer feed it.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrussa/order-bridge/internal/bundle"
	"github.com/mrussa/order-bridge/internal/canonical"
	"github.com/mrussa/order-bridge/internal/store"
)

var (
	// ErrMalformed marks a payload that cannot be coerced to an order
	// document at all. Terminal: never retried.
	ErrMalformed = errors.New("payload is not an order document")
	// ErrUpstream marks a failed enrichment call. Retryable: the webhook is
	// not partially stored.
	ErrUpstream = errors.New("upstream detail fetch failed")
)

// DetailFetcher pulls the full order document for a terse notification.
type DetailFetcher interface {
	FetchOrderDetail(ctx context.Context, orderID string) (any, error)
}

type Service struct {
	store    *store.Store
	upstream DetailFetcher // nil disables enrichment
	defaults canonical.Defaults
	logf     func(string, ...any)
}

func New(st *store.Store, up DetailFetcher, d canonical.Defaults, logf func(string, ...any)) *Service {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Service{store: st, upstream: up, defaults: d, logf: logf}
}

// Ingest normalizes a raw upstream payload and stores it as Pending (or
// updates a known order in place). It returns the order id on success.
// Failures map to the closed error kinds above plus canonical.ErrMissingID.
func (s *Service) Ingest(ctx context.Context, raw any) (string, error) {
	doc, kind := bundle.Extract(raw)
	if doc == nil {
		return "", ErrMalformed
	}
	if kind != bundle.KindObject {
		s.logf("[INGEST] unwrapped %s envelope", kind)
	}

	if id, terse := terseReference(doc); terse && s.upstream != nil {
		s.logf("[INGEST] terse notification for %s, fetching detail", id)
		full, err := s.upstream.FetchOrderDetail(ctx, id)
		if err != nil {
			return "", fmt.Errorf("%w: order %s: %v", ErrUpstream, id, err)
		}
		fullDoc, _ := bundle.Extract(full)
		if fullDoc == nil {
			return "", fmt.Errorf("%w: order %s: unusable detail payload", ErrUpstream, id)
		}
		doc = fullDoc
	}

	ord, err := canonical.Normalize(doc, s.defaults)
	if err != nil {
		return "", err
	}

	s.store.Put(*ord)
	s.logf("[INGEST] stored %s (items=%d)", ord.ID, len(ord.Items))
	return ord.ID, nil
}

// contentKeys are fields whose presence means the notification already
// carries order content and needs no enrichment.
var contentKeys = []string{
	"items", "itens", "products", "produtos",
	"total", "totals", "subtotal",
	"customer", "cliente",
	"orderType", "order_type",
	"payments", "payment",
}

func terseReference(doc bundle.Document) (string, bool) {
	id := canonical.ResolveID(doc)
	if id == "" {
		return "", false
	}
	for _, k := range contentKeys {
		if v, ok := doc[k]; ok && v != nil {
			return id, false
		}
	}
	return id, true
}

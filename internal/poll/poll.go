// Package poll projects Pending store records into the event summaries the
// downstream poller consumes.
package poll

import (
	"time"

	"github.com/mrussa/order-bridge/internal/store"
)

// Summary is one polling event.
type Summary struct {
	ID        string `json:"id"`
	OrderID   string `json:"orderId"`
	CreatedAt string `json:"createdAt"`
	FullCode  string `json:"fullCode"`
	Code      string `json:"code"`
}

const (
	DefaultFullCode = "PLACED"
	DefaultCode     = "PLC"
)

// BuildItems builds summaries in record order. A degraded record (no usable
// createdAt) still yields a best-effort summary keyed on ingestion time;
// omitting it would make the order permanently invisible to the poller.
func BuildItems(records []store.Record) []Summary {
	items := make([]Summary, 0, len(records))
	for _, rec := range records {
		s := Summary{
			ID:        rec.Order.ID,
			OrderID:   rec.Order.ID,
			CreatedAt: rec.Order.CreatedAt,
			FullCode:  DefaultFullCode,
			Code:      DefaultCode,
		}
		if s.CreatedAt == "" {
			s.CreatedAt = rec.ReceivedAt.UTC().Format(time.RFC3339)
		}
		if rec.Status != nil {
			if rec.Status.FullCode != "" {
				s.FullCode = rec.Status.FullCode
			}
			if rec.Status.Code != "" {
				s.Code = rec.Status.Code
			}
		}
		items = append(items, s)
	}
	return items
}

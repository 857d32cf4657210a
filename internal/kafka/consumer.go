// Package kafka is the second ingestion transport: upstream order events
// consumed from a topic run through the same pipeline as webhook bodies.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mrussa/order-bridge/internal/canonical"
	"github.com/mrussa/order-bridge/internal/ingest"
)

type Ingestor interface {
	Ingest(ctx context.Context, raw any) (string, error)
}

type reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

const (
	minBytes  = 1
	maxBytes  = 10 * 1024 * 1024
	retryBase = 300 * time.Millisecond
)

var newReader = func(cfg kafka.ReaderConfig) reader { return kafka.NewReader(cfg) }

type Consumer struct {
	Brokers []string
	Topic   string
	Group   string

	Ingest Ingestor

	Logf      func(string, ...any)
	RetryBase time.Duration
}

func NewConsumer(brokersCSV, topic, group string, ing Ingestor, logf func(string, ...any)) *Consumer {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Consumer{
		Brokers:   splitCSV(brokersCSV),
		Topic:     topic,
		Group:     group,
		Ingest:    ing,
		Logf:      logf,
		RetryBase: retryBase,
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	r := newReader(kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.Group,
		Topic:          c.Topic,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		CommitInterval: 0,
	})
	defer r.Close()

	c.Logf("[KAFKA] reader connected (group=%s topic=%s brokers=%v)", c.Group, c.Topic, c.Brokers)

	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				c.Logf("[KAFKA] stopped: %v", err)
				return err
			}
			c.Logf("[KAFKA] fetch error: %v", err)
			return err
		}
		c.handleMessage(ctx, r, msg)
	}
}

func (c *Consumer) handleMessage(ctx context.Context, r reader, msg kafka.Message) {
	var raw any
	if err := json.Unmarshal(msg.Value, &raw); err != nil {
		c.Logf("[KAFKA] bad json %s[%d]#%d: %v", msg.Topic, msg.Partition, msg.Offset, err)
		_ = r.CommitMessages(ctx, msg)
		return
	}

	id, err := c.Ingest.Ingest(ctx, raw)
	switch {
	case err == nil:
		if len(msg.Key) > 0 && string(msg.Key) != id {
			c.Logf("[KAFKA] key/payload mismatch %s[%d]#%d: key=%q payload=%q",
				msg.Topic, msg.Partition, msg.Offset, string(msg.Key), id)
		}
		c.Logf("[KAFKA] stored %s", id)
		if cErr := r.CommitMessages(ctx, msg); cErr != nil {
			c.Logf("[KAFKA] commit error %s[%d]#%d: %v", msg.Topic, msg.Partition, msg.Offset, cErr)
		}

	case errors.Is(err, ingest.ErrMalformed), errors.Is(err, canonical.ErrMissingID):
		// Terminal: redelivery cannot fix the payload.
		c.Logf("[KAFKA] rejected %s[%d]#%d: %v", msg.Topic, msg.Partition, msg.Offset, err)
		_ = r.CommitMessages(ctx, msg)

	default:
		// Retryable (upstream enrichment failure): leave uncommitted.
		c.Logf("[KAFKA] retryable %s[%d]#%d: %v", msg.Topic, msg.Partition, msg.Offset, err)
		c.backoff()
	}
}

func (c *Consumer) backoff() {
	j := time.Duration(rand.Intn(200)) * time.Millisecond
	time.Sleep(c.RetryBase + j)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

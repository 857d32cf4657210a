package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/mrussa/order-bridge/internal/canonical"
	"github.com/mrussa/order-bridge/internal/ingest"
)

type step struct {
	msg kafka.Message
	err error
}

type fakeReader struct {
	steps   []step
	i       int
	closed  bool
	commits []kafka.Message
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if f.i >= len(f.steps) {
		return kafka.Message{}, context.Canceled
	}
	s := f.steps[f.i]
	f.i++
	if s.err != nil {
		return kafka.Message{}, s.err
	}
	return s.msg, nil
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.commits = append(f.commits, msgs...)
	return nil
}

func (f *fakeReader) Close() error { f.closed = true; return nil }

type fakeIngestor struct {
	calls int
	last  any
	id    string
	err   error
}

func (f *fakeIngestor) Ingest(ctx context.Context, raw any) (string, error) {
	f.calls++
	f.last = raw
	return f.id, f.err
}

func withReader(t *testing.T, fr *fakeReader, ing Ingestor) error {
	t.Helper()
	orig := newReader
	newReader = func(cfg kafka.ReaderConfig) reader { return fr }
	defer func() { newReader = orig }()

	c := &Consumer{
		Brokers:   []string{"dummy:9092"},
		Topic:     "t",
		Group:     "g",
		Ingest:    ing,
		Logf:      func(string, ...any) {},
		RetryBase: 0,
	}
	return c.Run(context.Background())
}

func Test_splitCSV(t *testing.T) {
	require.Nil(t, splitCSV(""))
	require.Equal(t, []string{"a"}, splitCSV("a"))
	require.Equal(t, []string{"a", "b", "c"}, splitCSV(" , a, b ,, c , "))
}

func Test_NewConsumer(t *testing.T) {
	ing := &fakeIngestor{}
	got := NewConsumer("k1:9092,  k2:9092 , ,", "topic", "group", ing, nil)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, got.Brokers)
	require.Equal(t, "topic", got.Topic)
	require.Equal(t, "group", got.Group)
	require.Same(t, ing, got.Ingest)
	require.NotNil(t, got.Logf)
	require.Equal(t, retryBase, got.RetryBase)
}

func Test_Run_FetchCanceled(t *testing.T) {
	fr := &fakeReader{steps: []step{{err: context.Canceled}}}
	err := withReader(t, fr, &fakeIngestor{})
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, fr.closed)
}

func Test_Run_FetchOtherError(t *testing.T) {
	fr := &fakeReader{steps: []step{{err: errors.New("boom")}}}
	err := withReader(t, fr, &fakeIngestor{})
	require.EqualError(t, err, "boom")
}

func Test_Run_BadJSON_CommitsAndContinues(t *testing.T) {
	fr := &fakeReader{
		steps: []step{
			{msg: kafka.Message{Topic: "t", Offset: 1, Value: []byte("not-json")}},
			{err: context.Canceled},
		},
	}
	ing := &fakeIngestor{}
	err := withReader(t, fr, ing)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, fr.commits, 1)
	require.Equal(t, int64(1), fr.commits[0].Offset)
	require.Zero(t, ing.calls)
}

func Test_Run_StoredAndCommitted(t *testing.T) {
	fr := &fakeReader{
		steps: []step{
			{msg: kafka.Message{Topic: "t", Offset: 2, Key: []byte("900"), Value: []byte(`{"id":"900"}`)}},
			{err: context.Canceled},
		},
	}
	ing := &fakeIngestor{id: "900"}
	err := withReader(t, fr, ing)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, ing.calls)
	require.Len(t, fr.commits, 1)

	m, ok := ing.last.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "900", m["id"])
}

func Test_Run_TerminalRejectionsCommitted(t *testing.T) {
	for name, ingErr := range map[string]error{
		"malformed":  ingest.ErrMalformed,
		"missing_id": fmt.Errorf("wrap: %w", canonical.ErrMissingID),
	} {
		t.Run(name, func(t *testing.T) {
			fr := &fakeReader{
				steps: []step{
					{msg: kafka.Message{Topic: "t", Offset: 3, Value: []byte(`{}`)}},
					{err: context.Canceled},
				},
			}
			err := withReader(t, fr, &fakeIngestor{err: ingErr})
			require.ErrorIs(t, err, context.Canceled)
			require.Len(t, fr.commits, 1, "terminal failures must be committed away")
		})
	}
}

func Test_Run_RetryableNotCommitted(t *testing.T) {
	fr := &fakeReader{
		steps: []step{
			{msg: kafka.Message{Topic: "t", Offset: 4, Value: []byte(`{"id":"1"}`)}},
			{err: context.Canceled},
		},
	}
	err := withReader(t, fr, &fakeIngestor{err: ingest.ErrUpstream})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, fr.commits, "retryable failures must stay uncommitted")
}

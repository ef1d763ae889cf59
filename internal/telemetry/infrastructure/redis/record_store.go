package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	telemetry "analyzer-training/internal/telemetry/domain"
)

const defaultKeyPrefix = "analyzer:records:"

// RecordStore buffers raw records in one Redis list per window.
type RecordStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Option configures the store.
type Option func(*RecordStore)

// WithKeyPrefix overrides the list key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *RecordStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL expires a window list ttl after its last append. Zero keeps lists forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *RecordStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewClient connects and pings.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("record store: redis ping: %w", err)
	}
	return client, nil
}

// NewRecordStore constructs a store on client.
func NewRecordStore(client redis.UniversalClient, opts ...Option) (*RecordStore, error) {
	if client == nil {
		return nil, errors.New("record store: nil redis client")
	}
	store := &RecordStore{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Key returns the list key for window.
func (s *RecordStore) Key(window string) string {
	return s.prefix + window
}

// Append pushes records to the tail of the window list.
func (s *RecordStore) Append(ctx context.Context, window string, records []telemetry.RawRecord) error {
	if window == "" {
		return telemetry.ErrEmptyWindow
	}
	if len(records) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(records))
	for _, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("record store: marshal: %w", err)
		}
		values = append(values, payload)
	}

	key := s.Key(window)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record store: redis append: %w", err)
	}
	return nil
}

// List returns the window list in arrival order.
func (s *RecordStore) List(ctx context.Context, window string) ([]telemetry.RawRecord, error) {
	if window == "" {
		return nil, telemetry.ErrEmptyWindow
	}
	values, err := s.client.LRange(ctx, s.Key(window), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("record store: redis list: %w", err)
	}
	out := make([]telemetry.RawRecord, 0, len(values))
	for _, value := range values {
		var record telemetry.RawRecord
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			return nil, fmt.Errorf("record store: decode: %w", err)
		}
		out = append(out, record)
	}
	return out, nil
}

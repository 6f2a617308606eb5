package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tarantool/go-tarantool"
	pool "github.com/tarantool/go-tarantool/connection_pool"
)

const answeredSpace = "answered_polls"

// TarantoolStore keeps answered posts in the answered_polls space so they
// survive restarts. Tuples are {post_id, class_id, answered_at}.
type TarantoolStore struct {
	connPool *pool.ConnectionPool
	classID  string
}

// NewTarantoolStore connects to Tarantool and verifies the answered space
func NewTarantoolStore(addr, classID string, opts tarantool.Opts) (*TarantoolStore, error) {
	slog.Info("Connecting to Tarantool", "addr", addr)

	poolOpts := pool.OptsPool{
		CheckTimeout: 1 * time.Second,
	}

	connPool, err := pool.ConnectWithOpts([]string{addr}, opts, poolOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	_, err = connPool.Call("box.space."+answeredSpace+":len", []interface{}{}, pool.ANY)
	if err != nil {
		connPool.Close()
		return nil, fmt.Errorf("failed to verify %s space: %w", answeredSpace, err)
	}

	slog.Info("Successfully connected to Tarantool")
	return &TarantoolStore{
		connPool: connPool,
		classID:  classID,
	}, nil
}

func (s *TarantoolStore) Contains(ctx context.Context, postID string) (bool, error) {
	resp, err := s.connPool.Select(answeredSpace, "primary", 0, 1, tarantool.IterEq, []interface{}{postID}, pool.ANY)
	if err != nil {
		return false, fmt.Errorf("tarantool select error: %w", err)
	}

	return len(resp.Data) > 0, nil
}

func (s *TarantoolStore) Add(ctx context.Context, postID string) error {
	slog.Debug("Storing answered poll in Tarantool", "post_id", postID)

	_, err := s.connPool.Replace(
		answeredSpace,
		answeredTuple(postID, s.classID, time.Now()),
		pool.RW,
	)
	if err != nil {
		return fmt.Errorf("failed to store answered poll: %w", err)
	}

	return nil
}

func (s *TarantoolStore) Len(ctx context.Context) (int, error) {
	resp, err := s.connPool.Call("box.space."+answeredSpace+":len", []interface{}{}, pool.ANY)
	if err != nil {
		return 0, fmt.Errorf("tarantool len error: %w", err)
	}

	return firstCount(resp.Data), nil
}

// Close closes the Tarantool connection pool
func (s *TarantoolStore) Close() error {
	slog.Info("Closing Tarantool connection pool")
	errs := s.connPool.Close()
	if len(errs) > 0 {
		return fmt.Errorf("errors closing Tarantool pool: %v", errs)
	}
	return nil
}

func answeredTuple(postID, classID string, at time.Time) []interface{} {
	return []interface{}{postID, classID, uint64(at.Unix())}
}

// firstCount unpacks the number returned by a space:len call
func firstCount(data []interface{}) int {
	if len(data) == 0 {
		return 0
	}

	value := data[0]
	if row, ok := value.([]interface{}); ok {
		if len(row) == 0 {
			return 0
		}
		value = row[0]
	}

	switch n := value.(type) {
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case int:
		return n
	case uint32:
		return int(n)
	case int32:
		return int(n)
	case uint8:
		return int(n)
	case int8:
		return int(n)
	case uint16:
		return int(n)
	case int16:
		return int(n)
	default:
		return 0
	}
}

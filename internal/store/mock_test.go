package store

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
)

type MockDriver struct {
	QueryExecuted string
	QueryParams   map[string]any
	MockResult    neo4j.EagerResult
	Err           error
	Closed        bool
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.QueryExecuted = query
	m.QueryParams = params
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	m.Closed = true
	return nil
}

// MockRedis implements the string commands RedisStore uses over a map.
// Any other command panics on the nil embedded client.
type MockRedis struct {
	redis.UniversalClient

	Data   map[string]string
	Err    error
	Closed bool
}

func (m *MockRedis) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if m.Err != nil {
		return redis.NewStatusResult("", m.Err)
	}
	if m.Data == nil {
		m.Data = map[string]string{}
	}
	switch v := value.(type) {
	case []byte:
		m.Data[key] = string(v)
	default:
		m.Data[key] = fmt.Sprint(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.Err != nil {
		return redis.NewStringResult("", m.Err)
	}
	v, ok := m.Data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *MockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if m.Err != nil {
		return redis.NewIntResult(0, m.Err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := m.Data[k]; ok {
			delete(m.Data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *MockRedis) Close() error {
	m.Closed = true
	return nil
}

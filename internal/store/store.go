// Package store persists user profiles.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/agenthands/healthrisk/internal/driver"
	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no profile is stored under a key.
var ErrNotFound = errors.New("profile not found")

// ProfileStore persists profiles by key.
type ProfileStore interface {
	Save(ctx context.Context, key string, p model.Profile) error
	Get(ctx context.Context, key string) (*model.Profile, error)
	Delete(ctx context.Context, key string) error
	Close(ctx context.Context) error
}

// Open selects a backend from the scheme of databaseURL.
func Open(ctx context.Context, databaseURL string, logger logr.Logger) (ProfileStore, error) {
	log := logger.WithName("store")
	if databaseURL == "" {
		databaseURL = "memory://"
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	switch u.Scheme {
	case "memory":
		log.Info("Using in-memory profile store; profiles are lost on restart")
		return NewMemoryStore(), nil

	case "bolt", "bolt+s", "bolt+ssc", "neo4j", "neo4j+s", "neo4j+ssc":
		user := u.User.Username()
		pass, _ := u.User.Password()
		target := *u
		target.User = nil
		d, err := driver.NewMemgraphDriver(ctx, target.String(), user, pass, log)
		if err != nil {
			return nil, err
		}
		if err := d.BuildIndices(ctx); err != nil {
			_ = d.Close(ctx)
			return nil, err
		}
		return NewGraphStore(d), nil

	case "redis", "rediss":
		opts, err := redis.ParseURL(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
		}
		log.Info("Using redis profile store", "addr", opts.Addr, "db", opts.DB)
		return NewRedisStore(client), nil

	default:
		return nil, fmt.Errorf("unsupported database url scheme %q", u.Scheme)
	}
}

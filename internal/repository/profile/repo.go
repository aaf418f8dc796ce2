package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/schemematch/internal/db"
	"github.com/kailas-cloud/schemematch/internal/domain"
	domprofile "github.com/kailas-cloud/schemematch/internal/domain/profile"
)

var keyPrefix = domain.KeyPrefix + "profile:"

// store is the consumer interface for profiles (ISP).
type store interface {
	Ping(ctx context.Context) error
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// Repo stores user profiles as JSON documents.
type Repo struct {
	store store
}

// New creates a profile repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Ping checks store connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping profile store: %w", err)
	}
	return nil
}

// Get returns the stored profile of a user.
func (r *Repo) Get(ctx context.Context, userID string) (domprofile.UserProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return domprofile.UserProfile{}, domain.ErrProfileNotFound
	}
	key := profileKey(userID)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domprofile.UserProfile{}, domain.ErrProfileNotFound
		}
		return domprofile.UserProfile{}, fmt.Errorf("json.get %s: %w", key, err)
	}

	var p domprofile.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return domprofile.UserProfile{}, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	return p, nil
}

// Put stores a user's profile, replacing any previous one.
func (r *Repo) Put(ctx context.Context, userID string, p *domprofile.UserProfile) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidRequest)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	key := profileKey(userID)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

func profileKey(userID string) string {
	return keyPrefix + strings.TrimSpace(userID)
}

package annotation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"grantbot/internal/storage"
)

// Storage keys. The persisted shapes are a JSON array of names and a JSON
// object of name to stars.
const (
	KeyFavorites = "favoritedGrants"
	KeyRatings   = "grantRatings"
)

// Store loads and saves annotations. Failures are logged and never returned:
// loads fall back to empty values and saves are dropped.
type Store struct {
	st  storage.Storage
	log *slog.Logger
}

// NewStore creates a Store on top of st.
func NewStore(st storage.Storage, log *slog.Logger) *Store {
	return &Store{st: st, log: log}
}

// LoadFavorites returns the favorites saved for the session.
func (s *Store) LoadFavorites(ctx context.Context, sessionID int64) *Favorites {
	var names []string
	if !s.load(ctx, sessionID, KeyFavorites, &names) {
		return NewFavorites()
	}
	return NewFavorites(names...)
}

// SaveFavorites persists f for the session.
func (s *Store) SaveFavorites(ctx context.Context, sessionID int64, f *Favorites) {
	names := f.Names()
	if names == nil {
		names = []string{}
	}
	s.save(ctx, sessionID, KeyFavorites, names)
}

// LoadRatings returns the ratings saved for the session.
func (s *Store) LoadRatings(ctx context.Context, sessionID int64) *Ratings {
	var m map[string]int
	if !s.load(ctx, sessionID, KeyRatings, &m) {
		return NewRatings(nil)
	}
	return NewRatings(m)
}

// SaveRatings persists r for the session.
func (s *Store) SaveRatings(ctx context.Context, sessionID int64, r *Ratings) {
	s.save(ctx, sessionID, KeyRatings, r.Map())
}

func (s *Store) load(ctx context.Context, sessionID int64, key string, dst any) bool {
	raw, err := s.st.GetValue(ctx, sessionID, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		s.log.Error("failed to load annotations", "session_id", sessionID, "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Error("failed to decode annotations", "session_id", sessionID, "key", key,
			"error", fmt.Errorf("decode %s: %w", key, err))
		return false
	}
	return true
}

func (s *Store) save(ctx context.Context, sessionID int64, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("failed to encode annotations", "session_id", sessionID, "key", key, "error", err)
		return
	}
	if err := s.st.PutValue(ctx, sessionID, key, string(data)); err != nil {
		s.log.Error("failed to save annotations", "session_id", sessionID, "key", key, "error", err)
	}
}

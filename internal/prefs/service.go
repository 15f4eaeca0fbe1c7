package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/location"
	"github.com/skycast/skycast/internal/weather"
)

// ServiceConfig holds configuration for the prefs service.
type ServiceConfig struct {
	// Repository is the backing key-value store.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service applies the collection caps and ordering rules on top of the
// raw blob store. All mutations are read-modify-write under one lock.
type Service struct {
	repo   Repository
	logger zerolog.Logger

	mu sync.Mutex
}

// NewService creates a prefs service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}
}

// State returns the full persisted state, defaulting missing pieces.
func (s *Service) State(ctx context.Context) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadState(ctx)
}

// Favorites returns the favorites in insertion order.
func (s *Service) Favorites(ctx context.Context) ([]location.Location, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return st.Favorites, nil
}

// AddFavorite appends a location to the favorites. Duplicate ids are
// rejected and the list is capped at MaxFavorites.
func (s *Service) AddFavorite(ctx context.Context, loc location.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadState(ctx)
	if err != nil {
		return err
	}

	for _, f := range st.Favorites {
		if f.ID == loc.ID {
			return ErrFavoriteExists
		}
	}
	if len(st.Favorites) >= MaxFavorites {
		return ErrFavoritesFull
	}

	st.Favorites = append(st.Favorites, loc)
	return s.saveState(ctx, st)
}

// RemoveFavorite removes the favorite with the given location id.
func (s *Service) RemoveFavorite(ctx context.Context, locationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadState(ctx)
	if err != nil {
		return err
	}

	for i, f := range st.Favorites {
		if f.ID == locationID {
			st.Favorites = append(st.Favorites[:i], st.Favorites[i+1:]...)
			return s.saveState(ctx, st)
		}
	}
	return ErrFavoriteNotFound
}

// RecentSearches returns recent searches, most recent first.
func (s *Service) RecentSearches(ctx context.Context) ([]location.SearchResult, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return st.RecentSearches, nil
}

// AddRecentSearch puts a search at the front of the recents list.
// Re-inserting an existing entry moves it to the front; the list is
// capped at MaxRecentSearches.
func (s *Service) AddRecentSearch(ctx context.Context, res location.SearchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadState(ctx)
	if err != nil {
		return err
	}

	kept := make([]location.SearchResult, 0, len(st.RecentSearches)+1)
	kept = append(kept, res)
	for _, r := range st.RecentSearches {
		if r.ID != res.ID {
			kept = append(kept, r)
		}
	}
	if len(kept) > MaxRecentSearches {
		kept = kept[:MaxRecentSearches]
	}

	st.RecentSearches = kept
	return s.saveState(ctx, st)
}

// History returns the browsing history, most recent first.
func (s *Service) History(ctx context.Context) ([]HistoryEntry, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return st.History, nil
}

// RecordVisit prepends a history entry with the weather summary observed
// at visit time. Revisiting a location moves it to the front with a fresh
// snapshot; the list is capped at MaxHistoryEntries.
func (s *Service) RecordVisit(ctx context.Context, loc location.Location, summary weather.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadState(ctx)
	if err != nil {
		return err
	}

	entry := HistoryEntry{
		Location: loc,
		Summary:  summary,
		ViewedAt: time.Now().UTC(),
	}

	kept := make([]HistoryEntry, 0, len(st.History)+1)
	kept = append(kept, entry)
	for _, h := range st.History {
		if h.Location.ID != loc.ID {
			kept = append(kept, h)
		}
	}
	if len(kept) > MaxHistoryEntries {
		kept = kept[:MaxHistoryEntries]
	}

	st.History = kept
	return s.saveState(ctx, st)
}

// Settings returns the persisted settings.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	st, err := s.State(ctx)
	if err != nil {
		return Settings{}, err
	}
	return st.Settings, nil
}

// UpdateSettings replaces the persisted settings.
func (s *Service) UpdateSettings(ctx context.Context, settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadState(ctx)
	if err != nil {
		return err
	}
	st.Settings = settings
	return s.saveState(ctx, st)
}

// LastViewed returns the last-viewed location, or nil when unset.
func (s *Service) LastViewed(ctx context.Context) (*location.Location, error) {
	raw, ok, err := s.repo.Get(ctx, lastViewedKey)
	if err != nil || !ok {
		return nil, err
	}

	var loc location.Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		// A corrupt last-viewed blob is not worth failing a page load over.
		s.logger.Warn().Err(err).Msg("discarding unreadable last-viewed location")
		return nil, nil
	}
	return &loc, nil
}

// SetLastViewed persists the last-viewed location under its own key.
func (s *Service) SetLastViewed(ctx context.Context, loc location.Location) error {
	raw, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("encoding last-viewed location: %w", err)
	}
	return s.repo.Set(ctx, lastViewedKey, raw)
}

// Reset wipes all persisted state, both keys.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, stateKey); err != nil {
		return err
	}
	return s.repo.Delete(ctx, lastViewedKey)
}

// loadState reads and decodes the state blob. Callers hold s.mu.
func (s *Service) loadState(ctx context.Context) (*State, error) {
	raw, ok, err := s.repo.Get(ctx, stateKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return newState(), nil
	}

	st := newState()
	if err := json.Unmarshal(raw, st); err != nil {
		s.logger.Warn().Err(err).Msg("discarding unreadable prefs state")
		return newState(), nil
	}
	return st, nil
}

// saveState encodes and writes the state blob. Callers hold s.mu.
func (s *Service) saveState(ctx context.Context, st *State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding prefs state: %w", err)
	}
	return s.repo.Set(ctx, stateKey, raw)
}

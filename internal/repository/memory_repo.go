package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/RyanGano/skull-king/internal/domain"
)

// MemoryStore is the default Store when no database is configured, and the
// store the tests run on. Aggregates are held as serialized bytes so every
// Get hands back a fresh copy; two in-flight requests can never alias the
// same loaded aggregate.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[domain.GameID]memoryEntry
}

type memoryEntry struct {
	state []byte
	hash  string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[domain.GameID]memoryEntry)}
}

func (s *MemoryStore) Create(_ context.Context, game *domain.Game, hash string) error {
	state, err := json.Marshal(game)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[game.ID]; exists {
		return ErrGameExists
	}
	s.games[game.ID] = memoryEntry{state: state, hash: hash}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id domain.GameID) (*domain.Game, string, error) {
	s.mu.RLock()
	entry, ok := s.games[id]
	s.mu.RUnlock()
	if !ok {
		return nil, "", ErrGameNotFound
	}

	var game domain.Game
	if err := json.Unmarshal(entry.state, &game); err != nil {
		return nil, "", err
	}
	return &game, entry.hash, nil
}

func (s *MemoryStore) GetHash(_ context.Context, id domain.GameID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.games[id]
	if !ok {
		return "", ErrGameNotFound
	}
	return entry.hash, nil
}

func (s *MemoryStore) Save(_ context.Context, game *domain.Game, hash string) error {
	state, err := json.Marshal(game)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[game.ID]; !exists {
		return ErrGameNotFound
	}
	s.games[game.ID] = memoryEntry{state: state, hash: hash}
	return nil
}

func (s *MemoryStore) SingleGameID(_ context.Context) (domain.GameID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.games) != 1 {
		return "", false, nil
	}
	for id := range s.games {
		return id, true, nil
	}
	return "", false, nil
}

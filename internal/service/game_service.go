package service

import (
	"context"
	"errors"
	"sync"

	"github.com/RyanGano/skull-king/internal/domain"
	"github.com/RyanGano/skull-king/internal/logger"
	"github.com/RyanGano/skull-king/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game id already in use")
	// ErrStaleHash is the optimistic-concurrency conflict: the caller's
	// last-known fingerprint no longer matches current state. Safe to
	// retry after refetching.
	ErrStaleHash = errors.New("known hash does not match current game state")
	// ErrNotAuthorized means the acting player may not perform this
	// operation (not the controlling player, or not their own round).
	ErrNotAuthorized = errors.New("player is not allowed to perform this action")
)

// Player names that force well-known demo game ids.
var sampleGameIDs = map[string]domain.GameID{
	"__Sample Game 1__": "ABCD",
	"__Sample Game 2__": "1234",
}

// HashCache answers the polling fast path from a fingerprint cache. Only
// the write path may populate it, under the game lock, so the cached value
// can never lag a committed save.
type HashCache interface {
	Get(ctx context.Context, id domain.GameID) (string, bool)
	Set(ctx context.Context, id domain.GameID, hash string)
}

// GameService wraps the game aggregate with everything the core leaves to
// the boundary: id normalization, fingerprint comparison before every
// mutation, player authorization, and persisting state and fingerprint as
// one unit. A per-game mutex serializes writers so the compare-mutate-save
// sequence is atomic even on the in-memory store.
type GameService struct {
	store repository.Store
	cache HashCache // optional

	mu    sync.Mutex
	locks map[domain.GameID]*gameLock
}

func NewGameService(store repository.Store, cache HashCache) *GameService {
	return &GameService{
		store: store,
		cache: cache,
		locks: make(map[domain.GameID]*gameLock),
	}
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

// lockGame acquires the single writer lock for a game id and returns the
// matching release func. Entries are reference counted and dropped when the
// last holder releases, so the map tracks in-flight writes rather than
// every id ever touched.
func (s *GameService) lockGame(id domain.GameID) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &gameLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// CreateGame starts a new game for the founding player and returns the
// aggregate with its fingerprint.
func (s *GameService) CreateGame(ctx context.Context, playerName string) (*domain.Game, string, error) {
	id, fixed := sampleGameIDs[playerName]
	if !fixed {
		id = domain.NewGameID()
	}

	game := domain.NewGame(id, domain.NewPlayer(playerName))
	hash := game.Fingerprint()
	if err := s.store.Create(ctx, game, hash); err != nil {
		if errors.Is(err, repository.ErrGameExists) {
			return nil, "", ErrGameExists
		}
		return nil, "", err
	}
	s.cacheHash(ctx, game.ID, hash)

	logger.Info("game created", "game", game.ID, "player", playerName)
	return game, hash, nil
}

// GetGame loads a game by raw id. When the caller's knownHash still
// matches, it reports unchanged=true without returning state; the
// fingerprint cache answers that case without touching the store.
func (s *GameService) GetGame(ctx context.Context, rawID, knownHash string) (*domain.Game, string, bool, error) {
	id, err := domain.ParseGameID(rawID)
	if err != nil {
		return nil, "", false, err
	}

	if knownHash != "" {
		if hash, ok := s.currentHash(ctx, id); ok && hash == knownHash {
			return nil, hash, true, nil
		}
	}

	game, hash, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, "", false, mapStoreErr(err)
	}
	if knownHash != "" && hash == knownHash {
		return nil, hash, true, nil
	}
	return game, hash, false, nil
}

// FindSingleGameID reports the id of the only game in the store, used by
// the client's join auto-fill.
func (s *GameService) FindSingleGameID(ctx context.Context) (domain.GameID, bool, error) {
	return s.store.SingleGameID(ctx)
}

// AddPlayer joins a new player to the lobby.
func (s *GameService) AddPlayer(ctx context.Context, rawID, name string) (*domain.Game, string, *domain.Player, error) {
	var player domain.Player
	game, hash, err := s.mutate(ctx, rawID, "", func(g *domain.Game) error {
		info, err := g.AddPlayer(domain.NewPlayer(name))
		if err != nil {
			return err
		}
		player = info.Player
		return nil
	})
	if err != nil {
		return nil, "", nil, err
	}
	return game, hash, &player, nil
}

// RenamePlayer changes a player's display name.
func (s *GameService) RenamePlayer(ctx context.Context, rawID string, playerID uuid.UUID, name string) (*domain.Game, string, error) {
	return s.mutate(ctx, rawID, "", func(g *domain.Game) error {
		return g.RenamePlayer(playerID, name)
	})
}

// RemovePlayer drops a player from the lobby; only the controlling player
// may do this.
func (s *GameService) RemovePlayer(ctx context.Context, rawID string, actorID, targetID uuid.UUID, knownHash string) (*domain.Game, string, error) {
	return s.mutate(ctx, rawID, knownHash, func(g *domain.Game) error {
		if err := requireController(g, actorID); err != nil {
			return err
		}
		return g.RemovePlayer(targetID)
	})
}

// SetPlayerOrder reorders the lobby; only the controlling player may call.
func (s *GameService) SetPlayerOrder(ctx context.Context, rawID string, actorID uuid.UUID, order []uuid.UUID, knownHash string) (*domain.Game, string, error) {
	return s.mutate(ctx, rawID, knownHash, func(g *domain.Game) error {
		if err := requireController(g, actorID); err != nil {
			return err
		}
		return g.SetPlayerOrder(order)
	})
}

// StartGame begins round one; only the controlling player may call.
func (s *GameService) StartGame(ctx context.Context, rawID string, actorID uuid.UUID, knownHash string, randomBid bool, difficulty domain.Difficulty) (*domain.Game, string, error) {
	return s.mutate(ctx, rawID, knownHash, func(g *domain.Game) error {
		if err := requireController(g, actorID); err != nil {
			return err
		}
		return g.StartGame(randomBid, difficulty)
	})
}

// MoveToNextPhase advances the game; only the controlling player may call.
func (s *GameService) MoveToNextPhase(ctx context.Context, rawID string, actorID uuid.UUID, knownHash string) (*domain.Game, string, error) {
	return s.mutate(ctx, rawID, knownHash, func(g *domain.Game) error {
		if err := requireController(g, actorID); err != nil {
			return err
		}
		return g.MoveToNextPhase()
	})
}

// MoveToPreviousPhase undoes the last transition; only the controlling
// player may call.
func (s *GameService) MoveToPreviousPhase(ctx context.Context, rawID string, actorID uuid.UUID, knownHash string) (*domain.Game, string, error) {
	return s.mutate(ctx, rawID, knownHash, func(g *domain.Game) error {
		if err := requireController(g, actorID); err != nil {
			return err
		}
		return g.MoveToPreviousPhase()
	})
}

// SetBid records the acting player's bid on their own current round.
func (s *GameService) SetBid(ctx context.Context, rawID string, playerID uuid.UUID, bid int, knownHash string) (*domain.Game, string, error) {
	return s.mutate(ctx, rawID, knownHash, func(g *domain.Game) error {
		info, err := g.PlayerRoundsFor(playerID)
		if err != nil {
			return err
		}
		return info.SetBid(bid)
	})
}

// SetScore records the acting player's tricks taken and bonus on their own
// current round.
func (s *GameService) SetScore(ctx context.Context, rawID string, playerID uuid.UUID, tricksTaken, bonus int, knownHash string) (*domain.Game, string, error) {
	return s.mutate(ctx, rawID, knownHash, func(g *domain.Game) error {
		info, err := g.PlayerRoundsFor(playerID)
		if err != nil {
			return err
		}
		return info.SetScore(tricksTaken, bonus)
	})
}

// mutate is the single write path: lock the game, load it, reject stale
// fingerprints before touching the aggregate, apply the mutation, then
// persist state and new fingerprint together. An empty knownHash skips the
// staleness check (lobby operations the original exposes without one).
func (s *GameService) mutate(ctx context.Context, rawID, knownHash string, fn func(*domain.Game) error) (*domain.Game, string, error) {
	id, err := domain.ParseGameID(rawID)
	if err != nil {
		return nil, "", err
	}

	unlock := s.lockGame(id)
	defer unlock()

	game, _, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, "", mapStoreErr(err)
	}

	if knownHash != "" && game.Fingerprint() != knownHash {
		return nil, "", ErrStaleHash
	}

	if err := fn(game); err != nil {
		return nil, "", err
	}

	hash := game.Fingerprint()
	if err := s.store.Save(ctx, game, hash); err != nil {
		return nil, "", mapStoreErr(err)
	}
	s.cacheHash(ctx, id, hash)
	return game, hash, nil
}

// currentHash consults the cache first and falls back to the store. Misses
// are served from the store without back-filling: a reader here holds no
// game lock, so writing what it read could overwrite a concurrent save's
// fingerprint and leave every poller stuck on 304s.
func (s *GameService) currentHash(ctx context.Context, id domain.GameID) (string, bool) {
	if s.cache != nil {
		if hash, ok := s.cache.Get(ctx, id); ok {
			return hash, true
		}
	}
	hash, err := s.store.GetHash(ctx, id)
	if err != nil {
		return "", false
	}
	return hash, true
}

func (s *GameService) cacheHash(ctx context.Context, id domain.GameID, hash string) {
	if s.cache != nil {
		s.cache.Set(ctx, id, hash)
	}
}

func requireController(g *domain.Game, actorID uuid.UUID) error {
	if g.ControllingPlayer().ID != actorID {
		return ErrNotAuthorized
	}
	return nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, repository.ErrGameNotFound) {
		return ErrGameNotFound
	}
	return err
}

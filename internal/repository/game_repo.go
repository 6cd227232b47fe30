package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/RyanGano/skull-king/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game id already in use")
)

// Store persists game aggregates together with their fingerprints. The
// state and the hash are written as one unit so a poller can never observe
// a fingerprint that disagrees with the state it came with.
type Store interface {
	Create(ctx context.Context, game *domain.Game, hash string) error
	Get(ctx context.Context, id domain.GameID) (*domain.Game, string, error)
	GetHash(ctx context.Context, id domain.GameID) (string, error)
	Save(ctx context.Context, game *domain.Game, hash string) error
	// SingleGameID reports the id of the only stored game, if exactly one
	// game exists.
	SingleGameID(ctx context.Context) (domain.GameID, bool, error)
}

type GameRepository struct {
	db *pgxpool.Pool
}

func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

// Migrate creates the games table. The aggregate is stored as one JSONB
// document; the hash sits in its own column so polling clients can be
// answered without decoding the state.
func (r *GameRepository) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS games (
			id         TEXT PRIMARY KEY,
			state      JSONB NOT NULL,
			hash       TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (r *GameRepository) Create(ctx context.Context, game *domain.Game, hash string) error {
	state, err := json.Marshal(game)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO games (id, state, hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, game.ID.String(), state, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGameExists
	}
	return nil
}

func (r *GameRepository) Get(ctx context.Context, id domain.GameID) (*domain.Game, string, error) {
	var state []byte
	var hash string
	err := r.db.QueryRow(ctx, `
		SELECT state, hash FROM games WHERE id = $1
	`, id.String()).Scan(&state, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrGameNotFound
		}
		return nil, "", err
	}

	var game domain.Game
	if err := json.Unmarshal(state, &game); err != nil {
		return nil, "", err
	}
	return &game, hash, nil
}

func (r *GameRepository) GetHash(ctx context.Context, id domain.GameID) (string, error) {
	var hash string
	err := r.db.QueryRow(ctx, `
		SELECT hash FROM games WHERE id = $1
	`, id.String()).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrGameNotFound
		}
		return "", err
	}
	return hash, nil
}

func (r *GameRepository) Save(ctx context.Context, game *domain.Game, hash string) error {
	state, err := json.Marshal(game)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE games SET state = $2, hash = $3, updated_at = now()
		WHERE id = $1
	`, game.ID.String(), state, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (r *GameRepository) SingleGameID(ctx context.Context) (domain.GameID, bool, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM games LIMIT 2`)
	if err != nil {
		return "", false, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", false, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", false, err
	}
	if len(ids) != 1 {
		return "", false, nil
	}
	return domain.GameID(ids[0]), true, nil
}

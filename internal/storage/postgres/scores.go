package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/farmnav/farm-navigators/internal/game/state"
)

// GlobalScore is one row of the shared leaderboard.
type GlobalScore struct {
	ID         int64
	PlayerName string
	Name       string
	NationFlag string
	Score      int
	EarthIndex float64
	PlayedOn   string
	CreatedAt  time.Time
}

// ScoreRepository persists finished-game scores to the shared leaderboard.
type ScoreRepository struct {
	db *pgxpool.Pool
}

// NewScoreRepository creates a ScoreRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewScoreRepository(db *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Add inserts a scoreboard entry for the given player.
//
// Precondition: playerName must be non-empty.
// Postcondition: Returns the stored row with ID and CreatedAt set.
func (r *ScoreRepository) Add(ctx context.Context, playerName string, entry state.ScoreboardEntry) (GlobalScore, error) {
	var row GlobalScore
	err := r.db.QueryRow(ctx,
		`INSERT INTO scores (player_name, display_name, nation_flag, score, earth_index, played_on)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, player_name, display_name, nation_flag, score, earth_index, played_on, created_at`,
		playerName, entry.Name, entry.NationFlag, entry.Score, entry.EarthIndex, entry.Date,
	).Scan(&row.ID, &row.PlayerName, &row.Name, &row.NationFlag, &row.Score, &row.EarthIndex, &row.PlayedOn, &row.CreatedAt)
	if err != nil {
		return GlobalScore{}, fmt.Errorf("inserting score: %w", err)
	}
	return row, nil
}

// TopN returns the highest scores in descending order, ties broken by
// earliest insertion.
//
// Precondition: limit must be >= 1.
func (r *ScoreRepository) TopN(ctx context.Context, limit int) ([]GlobalScore, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, player_name, display_name, nation_flag, score, earth_index, played_on, created_at
		 FROM scores
		 ORDER BY score DESC, id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying scores: %w", err)
	}
	defer rows.Close()

	var scores []GlobalScore
	for rows.Next() {
		var row GlobalScore
		if err := rows.Scan(&row.ID, &row.PlayerName, &row.Name, &row.NationFlag, &row.Score, &row.EarthIndex, &row.PlayedOn, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning score row: %w", err)
		}
		scores = append(scores, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating score rows: %w", err)
	}
	return scores, nil
}

// Sink adapts a ScoreRepository to the session's fire-and-forget score
// publication. Database failures are logged and dropped so a broken
// leaderboard never interrupts play.
type Sink struct {
	repo    *ScoreRepository
	log     *zap.Logger
	timeout time.Duration
}

// NewSink creates a Sink over repo.
//
// Precondition: repo and log are non-nil; timeout > 0.
func NewSink(repo *ScoreRepository, timeout time.Duration, log *zap.Logger) *Sink {
	return &Sink{repo: repo, log: log, timeout: timeout}
}

// Publish stores entry on the shared leaderboard, absorbing any failure.
func (s *Sink) Publish(playerName string, entry state.ScoreboardEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.repo.Add(ctx, playerName, entry); err != nil {
		s.log.Error("failed to publish score to leaderboard",
			zap.String("player", playerName),
			zap.Int("score", entry.Score),
			zap.Error(err))
	}
}

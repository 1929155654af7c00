package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

const (
	fieldGames  = "games"
	fieldXWins  = "x_wins"
	fieldOWins  = "o_wins"
	fieldDraws  = "draws"
	fieldAIWins = "ai_wins"
)

// StatsRepository keeps finished-game tallies per mode in a redis hash.
type StatsRepository interface {
	Record(ctx context.Context, game *entity.Game) error
	Get(ctx context.Context, mode entity.Mode) (*entity.Stats, error)
}

type dbStats struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &dbStats{
		client: client,
	}
}

func statsKey(mode entity.Mode) string {
	return "stats:" + string(mode)
}

// Record - counts a finished game under its mode.
func (that *dbStats) Record(ctx context.Context, game *entity.Game) error {
	var field string
	switch game.Winner {
	case entity.PlayerX:
		field = fieldXWins
	case entity.PlayerO:
		field = fieldOWins
	case entity.PlayerTie:
		field = fieldDraws
	default:
		return fmt.Errorf("game %s has no result to record", game.ID)
	}

	key := statsKey(game.Mode)

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, fieldGames, 1)
		pipe.HIncrBy(ctx, key, field, 1)

		if game.IsWithBot() && game.Winner == game.AIMark {
			pipe.HIncrBy(ctx, key, fieldAIWins, 1)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record stats: %w", err)
	}

	return nil
}

func (that *dbStats) Get(ctx context.Context, mode entity.Mode) (*entity.Stats, error) {
	fields, err := that.client.HGetAll(ctx, statsKey(mode)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	stats := &entity.Stats{Mode: mode}
	targets := map[string]*int64{
		fieldGames:  &stats.Games,
		fieldXWins:  &stats.XWins,
		fieldOWins:  &stats.OWins,
		fieldDraws:  &stats.Draws,
		fieldAIWins: &stats.AIWins,
	}

	for name, target := range targets {
		value, ok := fields[name]
		if !ok {
			continue
		}

		if *target, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("failed to parse stats field %s: %w", name, err)
		}
	}

	return stats, nil
}

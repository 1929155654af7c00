package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/config"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/repository"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/repository/storage"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/usecase"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/transport/rest"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	options, err := gameOptions(conf.Game)
	if err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	gameRepo := repository.NewGameRepository(redisStorage)
	statsRepo := repository.NewStatsRepository(redisStorage)

	gameManager := usecase.NewGameManager(logger, gameRepo, statsRepo, options)
	defer gameManager.Close()

	ping := rest.NewPingHandler(logger, func(ctx context.Context) error {
		return redisStorage.Ping(ctx).Err()
	})

	router := rest.NewRouter(ping, rest.NewGameHandler(logger, gameManager))
	router.Get("/ws/{id}", websocket.New(logger, gameManager).Handle)

	log.Info("Starting HTTP server", "port", conf.HTTPPort)
	if err = rest.Start(ctx, conf.HTTPPort, router); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func gameOptions(conf config.Game) (usecase.Options, error) {
	defaults := entity.Settings{
		Mode:       entity.Mode(conf.Mode),
		Difficulty: entity.Difficulty(conf.Difficulty),
		AIMark:     entity.Mark(conf.AIMark),
	}

	if err := defaults.Validate(); err != nil {
		return usecase.Options{}, err
	}

	return usecase.Options{
		Defaults:     defaults,
		AIDelay:      conf.AIDelay,
		TimerEnabled: conf.TimerEnabled,
		TurnDuration: conf.TurnDuration,
		HistoryLimit: conf.HistoryLimit,
	}, nil
}

package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/tictactoe-core/internal/config"
	"github.com/rocketscienceinc/tictactoe-core/internal/console"
	"github.com/rocketscienceinc/tictactoe-core/internal/repository"
	"github.com/rocketscienceinc/tictactoe-core/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-core/internal/server"
	"github.com/rocketscienceinc/tictactoe-core/internal/service"
	"github.com/rocketscienceinc/tictactoe-core/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-core/transport/rest"
	"github.com/rocketscienceinc/tictactoe-core/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the REST and WebSocket servers until ctx is canceled.
func RunApp(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gameManager, closeStorage, err := newGameManager(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeStorage()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		srv := server.New(conf.HTTPPort, rest.NewRouter(logger, gameManager), 10*time.Second)
		httpErrCh <- server.Run(ctx, srv)
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager, conf.ComputerDelay)
		wsErrCh <- server.Run(ctx, server.New(conf.SocketPort, wsServer.Handler(ctx), 0))
	}()

	var runErr error

	select {
	case err = <-httpErrCh:
		httpErrCh = nil
		if err != nil {
			runErr = fmt.Errorf("HTTP server error: %w", err)
		}
	case err = <-wsErrCh:
		wsErrCh = nil
		if err != nil {
			runErr = fmt.Errorf("WebSocket server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	cancel()

	// wait for the remaining servers to drain
	return errors.Join(runErr, drain(httpErrCh), drain(wsErrCh))
}

// RunConsole plays on the terminal instead of serving.
func RunConsole(ctx context.Context, logger *slog.Logger, conf *config.Config, in io.Reader, out io.Writer) error {
	gameManager, closeStorage, err := newGameManager(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeStorage()

	return console.New(logger, gameManager, conf.ComputerDelay).Run(ctx, in, out)
}

func newGameManager(ctx context.Context, logger *slog.Logger, conf *config.Config) (*usecase.GameManager, func(), error) {
	log := logger.With("component", "app")

	sessionRepo, closeStorage, err := newSessionRepository(ctx, log, conf)
	if err != nil {
		return nil, nil, err
	}

	seed := conf.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Info("move advisor seeded", "seed", seed)

	bot := service.NewBotService(rand.New(rand.NewSource(seed))) //nolint: gosec // game moves, not secrets

	return usecase.NewGameManager(logger, sessionRepo, bot), closeStorage, nil
}

func newSessionRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.SessionRepository, func(), error) {
	if conf.Storage != config.StorageRedis {
		log.Info("sessions are kept in memory")
		return repository.NewMemorySessionRepository(), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if conf.Redis.Host == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	log.Info("sessions are kept in redis", "addr", redisAddrString, "ttl", conf.Redis.SessionTTL)

	closeStorage := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewSessionRepository(redisStorage, conf.Redis.SessionTTL), closeStorage, nil
}

func drain(errCh <-chan error) error {
	if errCh == nil {
		return nil
	}

	select {
	case err := <-errCh:
		return err
	case <-time.After(10 * time.Second):
		return nil
	}
}

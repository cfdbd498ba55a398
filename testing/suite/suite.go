package suite

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	expireDuration  = 120
	maxWaitDuration = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// dockerEnv opts in to a real Redis container; without it the suite runs on miniredis.
const dockerEnv = "TICTACTOE_DOCKER_TESTS"

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage *redis.Client

	// Miniredis is nil when the suite runs against a real container.
	Miniredis *miniredis.Miniredis
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(func() {
		cancel()
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	st := &Suite{
		T:      t,
		Logger: logger,
	}

	if os.Getenv(dockerEnv) != "" {
		if client, ok := startContainer(ctx, t); ok {
			st.Storage = client
			return ctx, st
		}
		t.Logf("docker is not reachable, falling back to miniredis")
	}

	mr := miniredis.RunT(t)
	st.Miniredis = mr
	st.Storage = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = st.Storage.Close()
	})

	return ctx, st
}

func startContainer(ctx context.Context, t *testing.T) (*redis.Client, bool) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Logf("could not construct docker pool: %v", err)
		return nil, false
	}

	if err = pool.Client.Ping(); err != nil {
		t.Logf("could not connect to docker: %v", err)
		return nil, false
	}

	// pulls an image, creates a container based on it and runs it
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
		Env:        []string{},
	}, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Logf("could not start resource: %v", err)
		return nil, false
	}

	// never returns error
	_ = resource.Expire(expireDuration) // Tell docker to hard kill the container in 120 seconds

	redisHost := resource.GetHostPort(redisPort)

	// exponential backoff-retry, because the application in the container might not be ready to accept connections yet
	pool.MaxWait = maxWaitDuration

	var redisClient *redis.Client
	if err = pool.Retry(func() error {
		redisClient = redis.NewClient(&redis.Options{
			Addr: redisHost,
		})
		return redisClient.Ping(ctx).Err()
	}); err != nil {
		if err = pool.Purge(resource); err != nil {
			t.Fatalf("could not purge resource: %v", err)
		}

		t.Fatalf("could not connect to redis: %v", err)
	}

	if err = redisClient.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	t.Cleanup(func() {
		t.Helper()

		_ = redisClient.Close()

		if err = pool.Purge(resource); err != nil {
			t.Fatalf("could not purge resource: %v", err)
		}
	})

	return redisClient, true
}

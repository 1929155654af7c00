package suite

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/repository/storage"
)

const (
	containerTTL = 120 // seconds
	startTimeout = 120 * time.Second
)

const (
	redisPort       = "6379/tcp"
	redisImage      = "redis"
	defaultRedisTag = "alpine"

	// redisTagEnv pins another redis image tag, e.g. to test against the production version.
	redisTagEnv = "TEST_REDIS_TAG"
)

// Suite is a throwaway redis container with a connected, empty database.
type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage *redis.Client
}

// New - starts redis for one test. The test is skipped when docker is not reachable.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	t.Cleanup(cancel)

	pool, resource := startRedis(t)
	client := connect(ctx, t, pool, resource)

	return ctx, &Suite{
		T:       t,
		Logger:  slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
		Storage: client,
	}
}

// Keys - returns the stored keys matching pattern.
func (that *Suite) Keys(ctx context.Context, pattern string) []string {
	that.Helper()

	keys, err := that.Storage.Keys(ctx, pattern).Result()
	if err != nil {
		that.Fatalf("could not list keys %q: %v", pattern, err)
	}

	return keys
}

func startRedis(t *testing.T) (*dockertest.Pool, *dockertest.Resource) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not reachable: %v", err)
	}

	tag := os.Getenv(redisTagEnv)
	if tag == "" {
		tag = defaultRedisTag
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        tag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis:%s: %v", tag, err)
	}

	// hard kill in case the cleanup never runs
	_ = resource.Expire(containerTTL)

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge redis container: %v", err)
		}
	})

	pool.MaxWait = startTimeout

	return pool, resource
}

// connect - waits until redis accepts connections and returns a client on an empty database.
func connect(ctx context.Context, t *testing.T, pool *dockertest.Pool, resource *dockertest.Resource) *redis.Client {
	t.Helper()

	addr := resource.GetHostPort(redisPort)

	var client *redis.Client
	err := pool.Retry(func() error {
		var connErr error
		client, connErr = storage.New(ctx, addr)
		return connErr
	})
	if err != nil {
		t.Fatalf("could not connect to redis at %s: %v", addr, err)
	}

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("could not close redis client: %v", err)
		}
	})

	if err = client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	return client
}

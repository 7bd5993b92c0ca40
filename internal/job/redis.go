package job

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings for the Redis-backed store.
type RedisConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	Password  string `yaml:"password" json:"password"`
	DB        int    `yaml:"db" json:"db"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// NewRedisClient connects and pings before returning, so a bad
// address fails at startup rather than on the first request.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisStore persists records as JSON values and keeps per-kind index
// sets so List stays cheap.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore wraps an already-connected client.
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	if namespace == "" {
		namespace = "ses"
	}
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) jobKey(id string) string   { return fmt.Sprintf("%s:job:%s", s.namespace, id) }
func (s *RedisStore) batchKey(id string) string { return fmt.Sprintf("%s:batch:%s", s.namespace, id) }
func (s *RedisStore) jobIndex() string          { return s.namespace + ":jobs" }
func (s *RedisStore) batchIndex() string        { return s.namespace + ":batches" }

func (s *RedisStore) CreateJob(ctx context.Context, j *ImportJob) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now

	if err := s.setJSON(ctx, s.jobKey(j.ID), j); err != nil {
		return err
	}
	return s.client.SAdd(ctx, s.jobIndex(), j.ID).Err()
}

func (s *RedisStore) GetJob(ctx context.Context, id string) (*ImportJob, error) {
	var j ImportJob
	if err := s.getJSON(ctx, s.jobKey(id), &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *RedisStore) UpdateJob(ctx context.Context, j *ImportJob) error {
	if err := s.exists(ctx, s.jobKey(j.ID)); err != nil {
		return err
	}
	j.UpdatedAt = time.Now().UTC()
	return s.setJSON(ctx, s.jobKey(j.ID), j)
}

func (s *RedisStore) ListJobs(ctx context.Context) ([]*ImportJob, error) {
	ids, err := s.client.SMembers(ctx, s.jobIndex()).Result()
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs := make([]*ImportJob, 0, len(ids))
	for _, id := range ids {
		j, err := s.GetJob(ctx, id)
		if err != nil {
			continue // index may lag deletions
		}
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(a, b int) bool {
		if !jobs[a].CreatedAt.Equal(jobs[b].CreatedAt) {
			return jobs[a].CreatedAt.After(jobs[b].CreatedAt)
		}
		return jobs[a].ID < jobs[b].ID
	})
	return jobs, nil
}

func (s *RedisStore) CreateBatch(ctx context.Context, b *CommunicationBatch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.CreatedAt = time.Now().UTC()

	if err := s.setJSON(ctx, s.batchKey(b.ID), b); err != nil {
		return err
	}
	return s.client.SAdd(ctx, s.batchIndex(), b.ID).Err()
}

func (s *RedisStore) GetBatch(ctx context.Context, id string) (*CommunicationBatch, error) {
	var b CommunicationBatch
	if err := s.getJSON(ctx, s.batchKey(id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *RedisStore) UpdateBatch(ctx context.Context, b *CommunicationBatch) error {
	if err := s.exists(ctx, s.batchKey(b.ID)); err != nil {
		return err
	}
	return s.setJSON(ctx, s.batchKey(b.ID), b)
}

func (s *RedisStore) ListBatches(ctx context.Context) ([]*CommunicationBatch, error) {
	ids, err := s.client.SMembers(ctx, s.batchIndex()).Result()
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	batches := make([]*CommunicationBatch, 0, len(ids))
	for _, id := range ids {
		b, err := s.GetBatch(ctx, id)
		if err != nil {
			continue
		}
		batches = append(batches, b)
	}
	sort.Slice(batches, func(a, b int) bool {
		if !batches[a].CreatedAt.Equal(batches[b].CreatedAt) {
			return batches[a].CreatedAt.After(batches[b].CreatedAt)
		}
		return batches[a].ID < batches[b].ID
	})
	return batches, nil
}

func (s *RedisStore) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) exists(ctx context.Context, key string) error {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("exists %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return nil
}

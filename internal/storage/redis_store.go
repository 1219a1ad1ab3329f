package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string // Адрес Redis сервера
	Password  string // Пароль (пустой если не требуется)
	DB        int    // Номер базы данных
	KeyPrefix string // Префикс для ключей
}

// RedisStore хранит факты мира как hash: <prefix><worldID> -> {time, days, updated_at}
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore подключается к Redis и проверяет соединение
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "worldcore:world:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, keyPrefix: cfg.KeyPrefix}, nil
}

func (r *RedisStore) ApplyUpdate(ctx context.Context, u WorldUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	fields := map[string]interface{}{
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if u.Time != nil {
		fields["time"] = strconv.FormatFloat(*u.Time, 'f', -1, 64)
	}
	if u.Days != nil {
		fields["days"] = *u.Days
	}

	if err := r.client.HSet(ctx, r.keyPrefix+u.WorldID, fields).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", u.WorldID, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, worldID string) (WorldRecord, error) {
	vals, err := r.client.HGetAll(ctx, r.keyPrefix+worldID).Result()
	if err != nil {
		return WorldRecord{}, fmt.Errorf("redis hgetall %s: %w", worldID, err)
	}
	if len(vals) == 0 {
		return WorldRecord{}, ErrNotFound
	}

	rec := WorldRecord{WorldID: worldID}
	if v, ok := vals["time"]; ok {
		if rec.Time, err = strconv.ParseFloat(v, 64); err != nil {
			return WorldRecord{}, fmt.Errorf("redis field time: %w", err)
		}
	}
	if v, ok := vals["days"]; ok {
		if rec.Days, err = strconv.Atoi(v); err != nil {
			return WorldRecord{}, fmt.Errorf("redis field days: %w", err)
		}
	}
	if v, ok := vals["updated_at"]; ok {
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, v)
	}
	return rec, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

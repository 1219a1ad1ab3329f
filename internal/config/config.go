package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/annel0/worldcore/internal/vec"
)

// ErrInvalid возвращается Validate для некорректной конфигурации.
var ErrInvalid = errors.New("invalid config")

// Config корневая структура конфигурации приложения.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Sky       SkyConfig       `yaml:"sky"`
	Workers   WorkersConfig   `yaml:"workers"`
	Storage   StorageConfig   `yaml:"storage"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Debug     DebugConfig     `yaml:"debug"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Session   SessionConfig   `yaml:"session"`
}

type WorldConfig struct {
	ChunkSize        int           `yaml:"chunk_size"`
	RenderRadius     int           `yaml:"render_radius"`
	VerticalRadius   int           `yaml:"vertical_radius"`
	EvictMargin      int           `yaml:"evict_margin"`
	EnvCheckInterval time.Duration `yaml:"env_check_interval"`
	TimeSyncInterval time.Duration `yaml:"time_sync_interval"`
	FrameRate        int           `yaml:"frame_rate"`
}

type SkyConfig struct {
	Speed     float64 `yaml:"speed"`
	DayLength float64 `yaml:"day_length"`
}

type WorkersConfig struct {
	Count     int `yaml:"count"`
	QueueSize int `yaml:"queue_size"`
}

type StorageConfig struct {
	Driver       string        `yaml:"driver"` // memory | badger | redis | mongo | mysql | eventbus
	QueueSize    int           `yaml:"queue_size"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	BadgerPath   string        `yaml:"badger_path"`
	RedisAddr    string        `yaml:"redis_addr"`
	RedisDB      int           `yaml:"redis_db"`
	MongoURI     string        `yaml:"mongo_uri"`
	MongoDB      string        `yaml:"mongo_database"`
	MySQLDSN     string        `yaml:"mysql_dsn"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type DebugConfig struct {
	Addr string `yaml:"addr"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// SessionConfig описывает метаданные мира и игрока для headless-сессии.
// PlayerY хранится сырым: nil или значение около -9007199254740991
// означают, что высота спавна неизвестна.
type SessionConfig struct {
	WorldID       string         `yaml:"world_id"`
	WorldName     string         `yaml:"world_name"`
	Seed          int64          `yaml:"seed"`
	Time          float64        `yaml:"time"`
	Days          int            `yaml:"days"`
	PlayerID      string         `yaml:"player_id"`
	PlayerY       *float64       `yaml:"player_y"`
	ChangedBlocks []ChangedBlock `yaml:"changed_blocks"`
}

// ChangedBlock - правка игрока поверх сгенерированного ландшафта
type ChangedBlock struct {
	X  int    `yaml:"x"`
	Y  int    `yaml:"y"`
	Z  int    `yaml:"z"`
	ID uint16 `yaml:"id"`
}

var storageDrivers = map[string]bool{
	"memory": true, "badger": true, "redis": true, "mongo": true, "mysql": true, "eventbus": true,
}

// Default возвращает полную конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			ChunkSize:        vec.DefaultChunkSize,
			RenderRadius:     4,
			VerticalRadius:   2,
			EvictMargin:      1,
			EnvCheckInterval: 100 * time.Millisecond,
			TimeSyncInterval: 500 * time.Millisecond,
			FrameRate:        60,
		},
		Sky: SkyConfig{
			Speed:     0.1,
			DayLength: 2400,
		},
		Workers: WorkersConfig{
			Count:     4,
			QueueSize: 256,
		},
		Storage: StorageConfig{
			Driver:       "memory",
			QueueSize:    64,
			WriteTimeout: 2 * time.Second,
			BadgerPath:   "data",
			MongoDB:      "worldcore",
		},
		EventBus: EventBusConfig{
			Stream:    "EVENTS",
			Retention: 24,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "worldcore",
		},
		Session: SessionConfig{
			WorldName: "world",
			PlayerID:  "player",
		},
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if !vec.IsPowerOfTwo(c.World.ChunkSize) {
		return fmt.Errorf("%w: chunk_size %d is not a power of two", ErrInvalid, c.World.ChunkSize)
	}
	if c.World.RenderRadius < 0 || c.World.VerticalRadius < 0 || c.World.EvictMargin < 0 {
		return fmt.Errorf("%w: radii must not be negative", ErrInvalid)
	}
	if c.World.EnvCheckInterval <= 0 || c.World.TimeSyncInterval <= 0 {
		return fmt.Errorf("%w: update intervals must be positive", ErrInvalid)
	}
	if c.World.FrameRate <= 0 {
		return fmt.Errorf("%w: frame_rate must be positive", ErrInvalid)
	}
	if c.Sky.DayLength <= 0 {
		return fmt.Errorf("%w: sky.day_length must be positive", ErrInvalid)
	}
	if c.Workers.Count <= 0 {
		return fmt.Errorf("%w: workers.count must be positive", ErrInvalid)
	}
	if !storageDrivers[c.Storage.Driver] {
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalid, c.Storage.Driver)
	}
	return nil
}

// GetDebugAddr возвращает адрес debug-сервера: config -> env -> default
func (d *DebugConfig) GetDebugAddr() string {
	return getWithEnvFallback(d.Addr, "WORLD_DEBUG_ADDR", ":8089")
}

// GetURL возвращает адрес NATS: config -> env -> default
func (e *EventBusConfig) GetURL() string {
	return getWithEnvFallback(e.URL, "WORLD_NATS_URL", "nats://127.0.0.1:4222")
}

// GetRetention возвращает срок хранения событий
func (e *EventBusConfig) GetRetention() time.Duration {
	return time.Duration(e.Retention) * time.Hour
}

func (s *StorageConfig) GetRedisAddr() string {
	return getWithEnvFallback(s.RedisAddr, "WORLD_REDIS_ADDR", "localhost:6379")
}

func (s *StorageConfig) GetMongoURI() string {
	return getWithEnvFallback(s.MongoURI, "WORLD_MONGO_URI", "mongodb://localhost:27017")
}

func (s *StorageConfig) GetMySQLDSN() string {
	return getWithEnvFallback(s.MySQLDSN, "WORLD_MYSQL_DSN", "world:world@tcp(localhost:3306)/worldcore?parseTime=true")
}

// GetWorkerCount возвращает число воркеров с поддержкой env WORLD_WORKERS
func (w *WorkersConfig) GetWorkerCount() int {
	if w.Count > 0 {
		return w.Count
	}
	if envVal := os.Getenv("WORLD_WORKERS"); envVal != "" {
		if n, err := strconv.Atoi(envVal); err == nil && n > 0 {
			return n
		}
	}
	return 4
}

// getWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getWithEnvFallback(configVal, envVar, defaultVal string) string {
	if configVal != "" {
		return configVal
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return defaultVal
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV WORLD_CONFIG; если и он пуст,
// возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("WORLD_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

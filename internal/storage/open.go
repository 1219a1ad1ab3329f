package storage

import (
	"context"
	"fmt"

	"github.com/annel0/worldcore/internal/config"
	"github.com/annel0/worldcore/internal/eventbus"
	"github.com/annel0/worldcore/internal/logging"
)

// Open создаёт Store по имени драйвера из конфигурации.
// bus нужен только драйверу "eventbus".
func Open(ctx context.Context, cfg config.StorageConfig, bus eventbus.EventBus) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Driver {
	case "", "memory":
		store = NewMemoryStore()
	case "badger":
		store, err = NewWorldStorage(cfg.BadgerPath)
	case "redis":
		store, err = NewRedisStore(ctx, RedisConfig{Addr: cfg.GetRedisAddr(), DB: cfg.RedisDB})
	case "mongo":
		store, err = NewMongoStore(ctx, MongoConfig{URI: cfg.GetMongoURI(), Database: cfg.MongoDB})
	case "mysql":
		store, err = NewMariaStore(ctx, cfg.GetMySQLDSN())
	case "eventbus":
		if bus == nil {
			return nil, fmt.Errorf("storage driver eventbus requires an event bus")
		}
		store = NewBusStore(bus, "worldcore")
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Driver, err)
	}

	logging.Info("💾 Хранилище фактов мира: %s", driverName(cfg.Driver))
	return store, nil
}

func driverName(d string) string {
	if d == "" {
		return "memory"
	}
	return d
}

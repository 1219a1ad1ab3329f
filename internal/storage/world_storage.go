package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

// WorldStorage хранит факты миров в BadgerDB. Значения - JSON, сжатый zstd.
type WorldStorage struct {
	db      *badger.DB
	mutex   sync.RWMutex
	isReady bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewWorldStorage открывает (или создаёт) хранилище в dataPath/world
func NewWorldStorage(dataPath string) (*WorldStorage, error) {
	dbPath := filepath.Join(dataPath, "world")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &WorldStorage{
		db:      db,
		isReady: true,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

func worldKey(worldID string) []byte {
	return []byte("world:" + worldID)
}

// Close закрывает хранилище данных
func (ws *WorldStorage) Close() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isReady {
		return nil
	}

	ws.isReady = false
	ws.encoder.Close()
	ws.decoder.Close()
	return ws.db.Close()
}

// ApplyUpdate читает запись, сливает мутацию и записывает в одной транзакции
func (ws *WorldStorage) ApplyUpdate(ctx context.Context, u WorldUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return ErrClosed
	}

	key := worldKey(u.WorldID)
	err := ws.db.Update(func(txn *badger.Txn) error {
		var rec WorldRecord

		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return ws.decode(val, &rec)
			}); err != nil {
				return err
			}
		}

		rec.Apply(u, time.Now().UTC())

		data, err := ws.encode(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// Load загружает запись мира
func (ws *WorldStorage) Load(ctx context.Context, worldID string) (WorldRecord, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return WorldRecord{}, ErrClosed
	}

	var rec WorldRecord
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(worldKey(worldID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return ws.decode(val, &rec)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return WorldRecord{}, ErrNotFound
	}
	if err != nil {
		return WorldRecord{}, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return rec, nil
}

func (ws *WorldStorage) encode(rec WorldRecord) ([]byte, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации записи: %w", err)
	}
	return ws.encoder.EncodeAll(raw, nil), nil
}

func (ws *WorldStorage) decode(val []byte, rec *WorldRecord) error {
	raw, err := ws.decoder.DecodeAll(val, nil)
	if err != nil {
		return fmt.Errorf("ошибка распаковки записи: %w", err)
	}
	if err := json.Unmarshal(raw, rec); err != nil {
		return fmt.Errorf("ошибка десериализации записи: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MariaStore реализует Store для MariaDB/MySQL (таблица world_facts).
type MariaStore struct {
	db *sql.DB
}

// NewMariaStore подключается к базе и создаёт таблицу, если её нет.
//
// Параметры:
//
//	dsn - строка подключения (user:pass@tcp(host:port)/dbname?parseTime=true)
func NewMariaStore(ctx context.Context, dsn string) (*MariaStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	store := &MariaStore{db: db}
	if err := store.createTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *MariaStore) createTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS world_facts (
			world_id   VARCHAR(64) PRIMARY KEY,
			time       DOUBLE      NULL,
			days       INT         NULL,
			updated_at TIMESTAMP(3) DEFAULT CURRENT_TIMESTAMP(3)
			           ON UPDATE   CURRENT_TIMESTAMP(3)
		) ENGINE=InnoDB
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ошибка создания таблицы world_facts: %w", err)
	}
	return nil
}

// ApplyUpdate использует INSERT ... ON DUPLICATE KEY UPDATE; NULL не затирает сохранённое значение
func (s *MariaStore) ApplyUpdate(ctx context.Context, u WorldUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	var t sql.NullFloat64
	if u.Time != nil {
		t = sql.NullFloat64{Float64: *u.Time, Valid: true}
	}
	var d sql.NullInt64
	if u.Days != nil {
		d = sql.NullInt64{Int64: int64(*u.Days), Valid: true}
	}

	query := `
		INSERT INTO world_facts (world_id, time, days) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			time = COALESCE(VALUES(time), time),
			days = COALESCE(VALUES(days), days)
	`
	if _, err := s.db.ExecContext(ctx, query, u.WorldID, t, d); err != nil {
		return fmt.Errorf("ошибка сохранения мира %s: %w", u.WorldID, err)
	}
	return nil
}

func (s *MariaStore) Load(ctx context.Context, worldID string) (WorldRecord, error) {
	rec := WorldRecord{WorldID: worldID}
	row := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(time, 0), COALESCE(days, 0), updated_at FROM world_facts WHERE world_id = ?`,
		worldID,
	)
	err := row.Scan(&rec.Time, &rec.Days, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return WorldRecord{}, ErrNotFound
	}
	if err != nil {
		return WorldRecord{}, fmt.Errorf("ошибка загрузки мира %s: %w", worldID, err)
	}
	return rec, nil
}

func (s *MariaStore) Close() error {
	return s.db.Close()
}

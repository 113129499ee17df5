// internal/store/sqlite/sqlite.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dbpkg "github.com/tamzrod/probe-harvester/internal/db"
	"github.com/tamzrod/probe-harvester/internal/store"
)

// Store persists readings and connection statuses. Writes go through the
// single-writer worker; reads use the pool directly.
type Store struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func New(db *sql.DB, writer *dbpkg.Worker) *Store {
	return &Store{db: db, writer: writer}
}

func (s *Store) InsertReading(ctx context.Context, r store.Reading) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	tsMs := r.Timestamp.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO readings(value1, value2, timestamp) VALUES (?, ?, ?);
`, nullable(r.Sensor1), nullable(r.Sensor2), tsMs); err != nil {
			return fmt.Errorf("InsertReading: %w", err)
		}
		return nil
	})
}

func (s *Store) InsertConnectionStatus(ctx context.Context, st store.ConnectionStatus) error {
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	createdMs := st.CreatedAt.UTC().UnixMilli()

	var info any
	if st.Info != nil {
		info = *st.Info
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO connection_statuses(is_connect, is_disconnect, info, reason_code, created_at)
VALUES (?, ?, ?, ?, ?);
`, boolInt(st.IsConnect), boolInt(st.IsDisconnect), info, int64(st.Code), createdMs); err != nil {
			return fmt.Errorf("InsertConnectionStatus: %w", err)
		}
		return nil
	})
}

// LatestReading returns the newest reading, or ok=false on an empty table.
func (s *Store) LatestReading(ctx context.Context) (store.Reading, bool, error) {
	var (
		v1, v2 sql.NullFloat64
		tsMs   int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT value1, value2, timestamp FROM readings ORDER BY timestamp DESC, id DESC LIMIT 1;
`).Scan(&v1, &v2, &tsMs)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Reading{}, false, nil
	}
	if err != nil {
		return store.Reading{}, false, fmt.Errorf("LatestReading: %w", err)
	}

	return store.Reading{
		Sensor1:   fromNull(v1),
		Sensor2:   fromNull(v2),
		Timestamp: time.UnixMilli(tsMs).UTC(),
	}, true, nil
}

// RecentStatuses returns up to limit connection statuses, newest first.
func (s *Store) RecentStatuses(ctx context.Context, limit int) ([]store.ConnectionStatus, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT is_connect, is_disconnect, info, reason_code, created_at
FROM connection_statuses
ORDER BY created_at DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("RecentStatuses: %w", err)
	}
	defer rows.Close()

	var out []store.ConnectionStatus
	for rows.Next() {
		var (
			isConnect, isDisconnect int
			info                    sql.NullString
			code                    int64
			createdMs               int64
		)
		if err := rows.Scan(&isConnect, &isDisconnect, &info, &code, &createdMs); err != nil {
			return nil, fmt.Errorf("RecentStatuses scan: %w", err)
		}
		st := store.ConnectionStatus{
			IsConnect:    isConnect != 0,
			IsDisconnect: isDisconnect != 0,
			Code:         uint16(code),
			CreatedAt:    time.UnixMilli(createdMs).UTC(),
		}
		if info.Valid {
			st.Info = store.String(info.String)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return store.Float(v.Float64)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

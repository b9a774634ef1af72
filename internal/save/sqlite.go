package save

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps snapshots in a SQLite database, one row per slot.
type SQLiteStore struct {
	conn *sqlx.DB
}

type slotRow struct {
	Slot    string `db:"slot"`
	Day     int    `db:"day"`
	SavedAt int64  `db:"saved_at"`
	Data    []byte `db:"data"`
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) migrate() error {
	_, err := s.conn.Exec(`
	CREATE TABLE IF NOT EXISTS saves (
		slot     TEXT PRIMARY KEY,
		day      INTEGER NOT NULL,
		saved_at INTEGER NOT NULL,
		data     BLOB NOT NULL
	);`)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, slot string, snap *Snapshot) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	_, err = s.conn.NamedExecContext(ctx, `
	INSERT INTO saves (slot, day, saved_at, data) VALUES (:slot, :day, :saved_at, :data)
	ON CONFLICT(slot) DO UPDATE SET day = excluded.day, saved_at = excluded.saved_at, data = excluded.data`,
		slotRow{Slot: slot, Day: snap.State.Day, SavedAt: snap.SavedAt.UnixNano(), Data: data})
	if err != nil {
		return fmt.Errorf("saving slot %s: %w", slot, err)
	}

	slog.InfoContext(ctx, "game saved", "slot", slot, "day", snap.State.Day, "backend", "sqlite")
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, slot string) (*Snapshot, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}

	var row slotRow
	err := s.conn.GetContext(ctx, &row, `SELECT slot, day, saved_at, data FROM saves WHERE slot = ?`, slot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot %s: %w", slot, err)
	}
	return Decode(row.Data)
}

func (s *SQLiteStore) List(ctx context.Context) ([]SlotInfo, error) {
	var rows []slotRow
	err := s.conn.SelectContext(ctx, &rows, `SELECT slot, day, saved_at FROM saves ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}

	out := make([]SlotInfo, len(rows))
	for i, r := range rows {
		out[i] = SlotInfo{Slot: r.Slot, Day: r.Day, SavedAt: time.Unix(0, r.SavedAt).UTC()}
	}
	return out, nil
}

package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/darshit3596/shreejida/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// requiredTables must all exist for a loaded database to be usable.
var requiredTables = []string{"users", "inventory", "invoices", "settings"}

var (
	// ErrNotFound is returned when an update or delete matches no row.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert collides with an existing key.
	ErrDuplicate = errors.New("already exists")

	// ErrCorrupt is returned by Open when the bytes are not a usable database.
	ErrCorrupt = errors.New("unreadable database")
)

// Store is an in-memory SQLite database holding one shop's AppData.
type Store struct {
	db *sql.DB
}

// New creates an empty store with the schema and the given default settings.
func New(ctx context.Context, defaults model.Settings) (*Store, error) {
	db, err := openMemory()
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}

	if err := s.applySchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.insertDefaultSettings(ctx, defaults); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Open hydrates a store from bytes previously produced by Export (or by any
// SQLite database file with the same schema). Errors wrap ErrCorrupt.
func Open(ctx context.Context, data []byte) (*Store, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrCorrupt)
	}

	db, err := openMemory()
	if err != nil {
		return nil, err
	}

	if err := restore(ctx, db, data); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	s := &Store{db: db}
	if err := s.verify(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return s, nil
}

// Close releases the database. The store is unusable afterwards.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Export serializes the entire database. Two exports with no write in between
// return identical bytes.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: acquire connection: %w", err)
	}
	defer conn.Close()

	var out []byte
	err = conn.Raw(func(driverConn any) error {
		c, err := sqliteConn(driverConn)
		if err != nil {
			return err
		}
		out, err = c.Serialize("main")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return out, nil
}

// openMemory opens a private in-memory database pinned to one connection.
func openMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every new connection would see a different empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// restore loads data into db. sqlite3_deserialize as exposed by the driver
// produces a fixed-size image, so the bytes are deserialized into a scratch
// connection and copied page by page into db with the backup API; db stays a
// normal growable in-memory database.
func restore(ctx context.Context, db *sql.DB, data []byte) error {
	scratch, err := openMemory()
	if err != nil {
		return err
	}
	defer scratch.Close()

	src, err := scratch.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire scratch connection: %w", err)
	}
	defer src.Close()

	dst, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer dst.Close()

	return src.Raw(func(srcDriver any) error {
		srcConn, err := sqliteConn(srcDriver)
		if err != nil {
			return err
		}
		if err := srcConn.Deserialize(data, "main"); err != nil {
			return fmt.Errorf("deserialize: %w", err)
		}

		return dst.Raw(func(dstDriver any) error {
			dstConn, err := sqliteConn(dstDriver)
			if err != nil {
				return err
			}
			bk, err := dstConn.Backup("main", srcConn, "main")
			if err != nil {
				return fmt.Errorf("backup: %w", err)
			}
			if _, err := bk.Step(-1); err != nil {
				bk.Finish()
				return fmt.Errorf("backup step: %w", err)
			}
			if err := bk.Finish(); err != nil {
				return fmt.Errorf("backup finish: %w", err)
			}
			return nil
		})
	})
}

func sqliteConn(driverConn any) (*sqlite3.SQLiteConn, error) {
	c, ok := driverConn.(*sqlite3.SQLiteConn)
	if !ok {
		return nil, fmt.Errorf("unexpected driver connection %T", driverConn)
	}
	return c, nil
}

// applySchema creates the four tables. Idempotent.
func (s *Store) applySchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func (s *Store) insertDefaultSettings(ctx context.Context, defaults model.Settings) error {
	rows, err := marshalSettings(defaults)
	if err != nil {
		return fmt.Errorf("default settings: %w", err)
	}
	for _, r := range rows {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, r.key, r.value)
		if err != nil {
			return fmt.Errorf("default settings: insert %q: %w", r.key, err)
		}
	}
	return nil
}

// verify checks page integrity and that every required table is present.
func (s *Store) verify(ctx context.Context) error {
	var result string
	if err := s.db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&result); err != nil {
		return fmt.Errorf("quick_check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("quick_check: %s", result)
	}

	for _, table := range requiredTables {
		var name string
		err := s.db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("missing table %q", table)
		}
		if err != nil {
			return fmt.Errorf("lookup table %q: %w", table, err)
		}
	}
	return nil
}

// isConstraintViolation reports whether err is a SQLite UNIQUE/PRIMARY KEY failure.
func isConstraintViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}

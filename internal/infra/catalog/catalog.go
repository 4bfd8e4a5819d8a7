// Package catalog stores imported recordings and their segments in a
// relational database. SQLite is the default backend; Postgres is available
// for shared deployments.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver string
	// Path is the database file for the sqlite driver.
	Path string
	// DSN is the connection string for the postgres driver.
	DSN string
}

type Catalog struct {
	conn   *sql.DB
	driver string
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Catalog, error) {
	var conn *sql.DB
	var err error

	switch cfg.Driver {
	case DriverSQLite:
		conn, err = sql.Open("sqlite3", cfg.Path)
	case DriverPostgres:
		conn, err = sql.Open("pgx", cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported catalog driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}

	return &Catalog{conn: conn, driver: cfg.Driver, logger: logger}, nil
}

var sqliteSchema = []string{`
CREATE TABLE IF NOT EXISTS recordings (
	id INTEGER PRIMARY KEY,
	filename TEXT UNIQUE,
	imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`, `
CREATE TABLE IF NOT EXISTS segments (
	id INTEGER PRIMARY KEY,
	recording_id INTEGER REFERENCES recordings(id),
	filename TEXT UNIQUE,
	start_sec REAL,
	end_sec REAL,
	bucket TEXT,
	notes TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`}

var postgresSchema = []string{`
CREATE TABLE IF NOT EXISTS recordings (
	id BIGSERIAL PRIMARY KEY,
	filename TEXT UNIQUE,
	imported_at TIMESTAMPTZ DEFAULT now()
)`, `
CREATE TABLE IF NOT EXISTS segments (
	id BIGSERIAL PRIMARY KEY,
	recording_id BIGINT REFERENCES recordings(id),
	filename TEXT UNIQUE,
	start_sec DOUBLE PRECISION,
	end_sec DOUBLE PRECISION,
	bucket TEXT,
	notes TEXT,
	created_at TIMESTAMPTZ DEFAULT now()
)`}

// Init creates the tables when missing. Statements run one at a time; the
// postgres driver's prepared statements reject multi-statement batches.
func (c *Catalog) Init(ctx context.Context) error {
	schema := sqliteSchema
	if c.driver == DriverPostgres {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := c.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create catalog tables: %w", err)
		}
	}
	c.logger.Info("catalog ready", zap.String("driver", c.driver))
	return nil
}

func (c *Catalog) UpsertRecording(ctx context.Context, filename string) (int64, error) {
	insert := c.rebind(`INSERT INTO recordings(filename) VALUES(?) ON CONFLICT(filename) DO NOTHING`)
	if _, err := c.conn.ExecContext(ctx, insert, filename); err != nil {
		return 0, fmt.Errorf("insert recording %q: %w", filename, err)
	}

	var id int64
	query := c.rebind(`SELECT id FROM recordings WHERE filename = ?`)
	if err := c.conn.QueryRowContext(ctx, query, filename).Scan(&id); err != nil {
		return 0, fmt.Errorf("select recording %q: %w", filename, err)
	}
	return id, nil
}

func (c *Catalog) FindRecording(ctx context.Context, filename string) (*entity.Recording, error) {
	query := c.rebind(`SELECT id, filename, imported_at FROM recordings WHERE filename = ?`)
	var rec entity.Recording
	err := c.conn.QueryRowContext(ctx, query, filename).Scan(&rec.ID, &rec.Filename, &rec.ImportedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find recording %q: %w", filename, err)
	}
	return &rec, nil
}

func (c *Catalog) InsertSegment(ctx context.Context, seg *entity.Segment) error {
	insert := c.rebind(`INSERT INTO segments(recording_id, filename, start_sec, end_sec, bucket, notes)
		VALUES(?, ?, ?, ?, ?, ?) ON CONFLICT(filename) DO NOTHING`)
	_, err := c.conn.ExecContext(ctx, insert,
		seg.RecordingID, seg.Filename, seg.StartSec, seg.EndSec, seg.Bucket, seg.Notes)
	if err != nil {
		return fmt.Errorf("insert segment %q: %w", seg.Filename, err)
	}
	return nil
}

func (c *Catalog) ListSegments(ctx context.Context, importDate string) ([]entity.Segment, error) {
	query := `SELECT s.id, s.recording_id, s.filename, s.start_sec, s.end_sec,
		COALESCE(s.bucket, ''), COALESCE(s.notes, ''), s.created_at
		FROM segments AS s JOIN recordings AS r ON s.recording_id = r.id`
	var args []any
	if importDate != "" {
		query += ` WHERE ` + c.importDateExpr() + ` = ?`
		args = append(args, importDate)
	}
	query += ` ORDER BY s.id`

	rows, err := c.conn.QueryContext(ctx, c.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var out []entity.Segment
	for rows.Next() {
		var seg entity.Segment
		if err := rows.Scan(&seg.ID, &seg.RecordingID, &seg.Filename,
			&seg.StartSec, &seg.EndSec, &seg.Bucket, &seg.Notes, &seg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		out = append(out, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	return out, nil
}

func (c *Catalog) Close() error {
	return c.conn.Close()
}

func (c *Catalog) importDateExpr() string {
	if c.driver == DriverPostgres {
		return `to_char(r.imported_at, 'YYYY-MM-DD')`
	}
	return `date(r.imported_at)`
}

// rebind converts ? placeholders to the $N form the postgres driver expects.
// SQLite statements pass through untouched.
func (c *Catalog) rebind(query string) string {
	if c.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

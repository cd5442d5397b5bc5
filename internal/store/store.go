// Package store persists field definitions per object type in a SQL
// database. SQLite is the default; PostgreSQL is reachable through either
// the pgx or the lib/pq driver.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/splashsync/connector/internal/fields"
	"github.com/splashsync/connector/internal/token"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a field is not stored
var ErrNotFound = errors.New("record not found")

// TableName is the table holding field definitions
const TableName = "connector_fields"

// Repository is the storage contract for field definitions.
type Repository interface {
	Save(ctx context.Context, objectType string, f *fields.Field) error
	Get(ctx context.Context, objectType, id string) (*fields.Field, error)
	GetMany(ctx context.Context, objectType string, ids []string) ([]*fields.Field, error)
	List(ctx context.Context, objectType string) ([]*fields.Field, error)
	FindByBase(ctx context.Context, objectType, base string) ([]*fields.Field, error)
	Delete(ctx context.Context, objectType, id string) error
	ObjectTypes(ctx context.Context) ([]string, error)
}

// Store is the database/sql implementation of Repository.
type Store struct {
	db      *sql.DB
	dialect dialect
	table   string
	logger  *zap.Logger
}

// Open opens a database with the given driver: sqlite3, pgx or postgres.
func Open(driver, url string, logger *zap.Logger) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if d == sqliteDialect {
		// A shared connection keeps in-memory databases visible across calls.
		db.SetMaxOpenConns(1)
	}

	return New(db, driver, logger)
}

// New wraps an existing connection.
func New(db *sql.DB, driver string, logger *zap.Logger) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:      db,
		dialect: d,
		table:   pq.QuoteIdentifier(TableName),
		logger:  logger,
	}, nil
}

// DB returns the underlying connection
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the fields table and its indexes if missing.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	object_type VARCHAR(255) NOT NULL,
	id TEXT NOT NULL,
	base TEXT NOT NULL,
	list TEXT,
	definition TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (object_type, id)
)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_connector_fields_base ON %s (object_type, base)`, s.table),
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate fields table: %w", err)
		}
	}
	s.logger.Debug("fields table ready", zap.String("table", TableName))
	return nil
}

// Save inserts or replaces a field definition. The base and list columns
// are derived from the field ID; list is NULL for fields outside a list.
func (s *Store) Save(ctx context.Context, objectType string, f *fields.Field) error {
	if f == nil || f.ID == "" {
		return fmt.Errorf("%w: empty field id", fields.ErrInvalidField)
	}

	definition, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode field %s: %w", f.ID, err)
	}

	var list sql.NullString
	if name, ok := token.ListName(f.ID); ok {
		list = sql.NullString{String: name, Valid: true}
	}

	p := s.dialect.placeholders(6)
	query := fmt.Sprintf(`INSERT INTO %s (object_type, id, base, list, definition, updated_at)
VALUES (%s)
ON CONFLICT (object_type, id) DO UPDATE SET
	base = excluded.base,
	list = excluded.list,
	definition = excluded.definition,
	updated_at = excluded.updated_at`, s.table, strings.Join(p, ", "))

	if _, err := s.db.ExecContext(ctx, query, objectType, f.ID, f.Base(), list, string(definition), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save field %s of %s: %w", f.ID, objectType, err)
	}

	s.logger.Debug("field saved",
		zap.String("object_type", objectType),
		zap.String("id", f.ID),
		zap.String("base", f.Base()))
	return nil
}

// Get loads one field by its exact ID
func (s *Store) Get(ctx context.Context, objectType, id string) (*fields.Field, error) {
	p := s.dialect.placeholders(2)
	query := fmt.Sprintf(`SELECT definition FROM %s WHERE object_type = %s AND id = %s`, s.table, p[0], p[1])

	var definition string
	err := s.db.QueryRowContext(ctx, query, objectType, id).Scan(&definition)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s of %s", ErrNotFound, id, objectType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get field %s of %s: %w", id, objectType, err)
	}
	return decodeField(definition)
}

// GetMany loads the fields with the given IDs; missing IDs are skipped.
func (s *Store) GetMany(ctx context.Context, objectType string, ids []string) ([]*fields.Field, error) {
	if len(ids) == 0 {
		return []*fields.Field{}, nil
	}

	var (
		query string
		args  []interface{}
	)
	if s.dialect == postgresDialect {
		query = fmt.Sprintf(`SELECT definition FROM %s WHERE object_type = $1 AND id = ANY($2) ORDER BY id`, s.table)
		args = []interface{}{objectType, pq.Array(ids)}
	} else {
		p := s.dialect.placeholders(len(ids) + 1)
		query = fmt.Sprintf(`SELECT definition FROM %s WHERE object_type = %s AND id IN (%s) ORDER BY id`,
			s.table, p[0], strings.Join(p[1:], ", "))
		args = append(args, objectType)
		for _, id := range ids {
			args = append(args, id)
		}
	}
	return s.queryFields(ctx, query, args...)
}

// List returns all fields of an object type ordered by ID
func (s *Store) List(ctx context.Context, objectType string) ([]*fields.Field, error) {
	p := s.dialect.placeholders(1)
	query := fmt.Sprintf(`SELECT definition FROM %s WHERE object_type = %s ORDER BY id`, s.table, p[0])
	return s.queryFields(ctx, query, objectType)
}

// FindByBase returns the fields whose ID resolves to base
func (s *Store) FindByBase(ctx context.Context, objectType, base string) ([]*fields.Field, error) {
	p := s.dialect.placeholders(2)
	query := fmt.Sprintf(`SELECT definition FROM %s WHERE object_type = %s AND base = %s ORDER BY id`, s.table, p[0], p[1])
	return s.queryFields(ctx, query, objectType, base)
}

// Delete removes a field; deleting a missing field returns ErrNotFound
func (s *Store) Delete(ctx context.Context, objectType, id string) error {
	p := s.dialect.placeholders(2)
	query := fmt.Sprintf(`DELETE FROM %s WHERE object_type = %s AND id = %s`, s.table, p[0], p[1])

	res, err := s.db.ExecContext(ctx, query, objectType, id)
	if err != nil {
		return fmt.Errorf("failed to delete field %s of %s: %w", id, objectType, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete field %s of %s: %w", id, objectType, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s of %s", ErrNotFound, id, objectType)
	}
	return nil
}

// ObjectTypes returns the distinct object types with stored fields
func (s *Store) ObjectTypes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT DISTINCT object_type FROM %s ORDER BY object_type`, s.table))
	if err != nil {
		return nil, fmt.Errorf("failed to list object types: %w", err)
	}
	defer rows.Close()

	types := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan object type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating object types: %w", err)
	}
	return types, nil
}

func (s *Store) queryFields(ctx context.Context, query string, args ...interface{}) ([]*fields.Field, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fields: %w", err)
	}
	defer rows.Close()

	out := []*fields.Field{}
	for rows.Next() {
		var definition string
		if err := rows.Scan(&definition); err != nil {
			return nil, fmt.Errorf("failed to scan field: %w", err)
		}
		f, err := decodeField(definition)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fields: %w", err)
	}
	return out, nil
}

func decodeField(definition string) (*fields.Field, error) {
	var f fields.Field
	if err := json.Unmarshal([]byte(definition), &f); err != nil {
		return nil, fmt.Errorf("failed to decode field definition: %w", err)
	}
	return &f, nil
}

// LoadRegistry builds a field registry for objectType from repo.
func LoadRegistry(ctx context.Context, repo Repository, objectType string) (*fields.Registry, error) {
	stored, err := repo.List(ctx, objectType)
	if err != nil {
		return nil, err
	}
	reg := fields.NewRegistry(objectType)
	if err := reg.Register(stored...); err != nil {
		return nil, fmt.Errorf("failed to load %s registry: %w", objectType, err)
	}
	return reg, nil
}

// SaveRegistry stores every field of reg.
func SaveRegistry(ctx context.Context, repo Repository, reg *fields.Registry) error {
	for _, f := range reg.All() {
		if err := repo.Save(ctx, reg.ObjectType(), f); err != nil {
			return err
		}
	}
	return nil
}

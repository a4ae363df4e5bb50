package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/kailas-cloud/solrdex/internal/db"
	"github.com/kailas-cloud/solrdex/internal/domain"
	"github.com/kailas-cloud/solrdex/internal/domain/record"
)

// Compile-time check: Store implements db.RecordLister.
var _ db.RecordLister = (*Store)(nil)

// Config holds MySQL connection parameters.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// Class maps a record class to the table it is read from.
type Class struct {
	Table    string
	IDColumn string   // default "id"
	Columns  []string // empty selects every column
}

// Store lists records of whitelisted classes.
type Store struct {
	db      *sql.DB
	classes map[string]Class
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NewStore opens a MySQL connection pool and verifies it with a ping.
func NewStore(cfg Config, classes map[string]Class) (*Store, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}

	conn, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	s, err := NewStoreWithDB(conn, classes)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return s, nil
}

// NewStoreWithDB wraps an open pool. Table and column names are validated.
func NewStoreWithDB(conn *sql.DB, classes map[string]Class) (*Store, error) {
	checked := make(map[string]Class, len(classes))
	for name, c := range classes {
		if c.IDColumn == "" {
			c.IDColumn = "id"
		}
		if !identifier.MatchString(c.Table) || !identifier.MatchString(c.IDColumn) {
			return nil, fmt.Errorf("record class %q: invalid table or id column", name)
		}
		for _, col := range c.Columns {
			if !identifier.MatchString(col) {
				return nil, fmt.Errorf("record class %q: invalid column %q", name, col)
			}
		}
		checked[name] = c
	}
	return &Store{db: conn, classes: checked}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Count returns the number of records of class.
func (s *Store) Count(ctx context.Context, class string) (int, error) {
	c, err := s.class(class)
	if err != nil {
		return 0, err
	}
	var n int
	query := "SELECT COUNT(*) FROM " + quote(c.Table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// Page returns up to length records of class starting at offset, ordered by id.
func (s *Store) Page(ctx context.Context, class string, offset, length int) ([]record.Record, error) {
	c, err := s.class(class)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT ? OFFSET ?",
		selectList(c), quote(c.Table), quote(c.IDColumn))

	rows, err := s.db.QueryContext(ctx, query, length, offset)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		rec, err := scanRecord(rows, c)
		if err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return out, nil
}

// Get returns a single record of class by id.
func (s *Store) Get(ctx context.Context, class, id string) (record.Record, error) {
	c, err := s.class(class)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		selectList(c), quote(c.Table), quote(c.IDColumn))

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		return nil, fmt.Errorf("%s %s: %w", class, id, domain.ErrRecordNotFound)
	}
	rec, err := scanRecord(rows, c)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return rec, nil
}

func (s *Store) class(name string) (Class, error) {
	c, ok := s.classes[name]
	if !ok {
		return Class{}, fmt.Errorf("%w: %q", domain.ErrUnknownRecordClass, name)
	}
	return c, nil
}

func quote(ident string) string { return "`" + ident + "`" }

func selectList(c Class) string {
	if len(c.Columns) == 0 {
		return "*"
	}
	cols := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		cols[i] = quote(col)
	}
	return strings.Join(cols, ", ")
}

// scanRecord reads the current row into a record. Byte values become strings
// and the id column is also exposed as "id".
func scanRecord(rows *sql.Rows, c Class) (record.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	rec := make(record.Record, len(cols)+1)
	for i, col := range cols {
		if b, ok := values[i].([]byte); ok {
			rec[col] = string(b)
			continue
		}
		rec[col] = values[i]
	}
	if v, ok := rec[c.IDColumn]; ok {
		rec["id"] = v
	}
	return rec, nil
}

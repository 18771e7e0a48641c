package kv

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

type dialect struct {
	driver string
	ddl    string
	get    string
	set    string
	del    string
}

var (
	sqliteDialect = dialect{
		driver: "sqlite",
		ddl: `
CREATE TABLE IF NOT EXISTS kv_entries (
	name TEXT PRIMARY KEY,
	payload TEXT NOT NULL
);`,
		get: `SELECT payload FROM kv_entries WHERE name = ?;`,
		set: `INSERT INTO kv_entries (name, payload) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET payload = excluded.payload;`,
		del: `DELETE FROM kv_entries WHERE name = ?;`,
	}

	mysqlDialect = dialect{
		driver: "mysql",
		ddl: `
CREATE TABLE IF NOT EXISTS kv_entries (
	name VARCHAR(255) NOT NULL PRIMARY KEY,
	payload LONGTEXT NOT NULL
)`,
		get: `SELECT payload FROM kv_entries WHERE name = ?`,
		set: `INSERT INTO kv_entries (name, payload) VALUES (?, ?)
ON DUPLICATE KEY UPDATE payload = VALUES(payload)`,
		del: `DELETE FROM kv_entries WHERE name = ?`,
	}
)

// SQL is a Backend over database/sql. It is used for the SQLite and MySQL
// backends, which differ only in DDL and upsert syntax.
type SQL struct {
	db *sql.DB
	d  dialect
}

// OpenSQLite opens (creating if needed) the SQLite database at dbPath.
func OpenSQLite(dbPath string) (*SQL, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open(sqliteDialect.driver, sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return newSQL(db, sqliteDialect)
}

// OpenMySQL connects to the MySQL server described by dsn.
func OpenMySQL(dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, errors.New("mysql dsn is empty")
	}
	db, err := sql.Open(mysqlDialect.driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach mysql: %w", err)
	}
	return newSQL(db, mysqlDialect)
}

func newSQL(db *sql.DB, d dialect) (*SQL, error) {
	s := &SQL{db: db, d: d}
	if _, err := db.Exec(d.ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQL) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQL) Get(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow(s.d.get, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQL) Set(key, value string) error {
	_, err := s.db.Exec(s.d.set, key, value)
	return err
}

func (s *SQL) Delete(key string) error {
	_, err := s.db.Exec(s.d.del, key)
	return err
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	u.RawQuery = q.Encode()
	return u.String()
}

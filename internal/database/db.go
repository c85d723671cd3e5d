package database

import (
	"context"
	"database/sql"
	"io/fs"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	pkgerrors "github.com/pkg/errors"
)

// Options are the connection settings of the MySQL pool.
type Options struct {
	User, Pass, Host, Port, Name string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the MySQL DSN. parseTime maps DATETIME to time.Time, loc=UTC
// keeps times consistent and clientFoundRows makes UPDATE report matched
// rows, so an update that changes nothing is not mistaken for a miss.
func DSN(o Options) string {
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, o.Port)
	cfg.DBName = o.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects to MySQL and pings it within ctx.
func Open(ctx context.Context, o Options) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(o))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open mysql")
	}
	if o.MaxOpenConns > 0 {
		db.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		db.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(o.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrapf(err, "ping mysql at %s:%s", o.Host, o.Port)
	}
	return db, nil
}

// Statements splits a schema file into statements on ";" line ends.
// Comment lines ("-- ...") are dropped.
func Statements(script string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			out = append(out, strings.TrimSuffix(strings.TrimSpace(cur.String()), ";"))
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

// Migrate applies every *.sql file of fsys in name order. The schema uses
// CREATE TABLE IF NOT EXISTS, so running it again is harmless.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		bs, err := fs.ReadFile(fsys, name)
		if err != nil {
			return pkgerrors.Wrapf(err, "read %s", name)
		}
		for i, stmt := range Statements(string(bs)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return pkgerrors.Wrapf(err, "%s statement %d", name, i+1)
			}
		}
	}
	return nil
}

package store

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
	MySQL    Dialect = "mysql"
)

type Config struct {
	Dialect  Dialect `yaml:"dialect" envconfig:"DB_DIALECT" default:"postgres"`
	Host     string  `yaml:"host" envconfig:"DB_HOST" default:"localhost"`
	Port     string  `yaml:"port" envconfig:"DB_PORT" default:"5432"`
	Username string  `yaml:"user" envconfig:"DB_USER" default:"postgres"`
	Password string  `yaml:"password" envconfig:"DB_PASSWORD" json:"-"`
	NameDB   string  `yaml:"dbname" envconfig:"DB_NAME" default:"library"`
	// Path is the database file for the sqlite3 dialect.
	Path string `yaml:"path" envconfig:"DB_PATH" default:"library.db"`

	MaxConns        int32         `yaml:"maxConns" envconfig:"DB_MAX_CONNS" default:"8"`
	MinConns        int32         `yaml:"minConns" envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `yaml:"maxConnLifetime" envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"maxConnIdleTime" envconfig:"DB_MAX_CONN_IDLE_TIME" default:"5m"`
	ConnectTimeout  time.Duration `yaml:"connectTimeout" envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
}

// DB is a pooled connection to one of the supported dialects.
type DB struct {
	*sqlx.DB
	Dialect Dialect
	pool    *pgxpool.Pool
	log     *zap.Logger
}

type Option func(db *DB)

// WithLogger sends migration output to log instead of discarding it.
func WithLogger(log *zap.Logger) Option {
	return func(db *DB) {
		if log != nil {
			db.log = log
		}
	}
}

func (db *DB) Close() error {
	err := db.DB.Close()
	if db.pool != nil {
		db.pool.Close()
	}
	return err
}

// Builder returns a statement builder with the dialect's placeholder format.
func (db *DB) Builder() sq.StatementBuilderType {
	if db.Dialect == Postgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// SupportsReturning reports whether INSERT ... RETURNING can be used.
func (db *DB) SupportsReturning() bool {
	return db.Dialect != MySQL
}

// New opens the pool, pings it and applies the migrations found under the
// dialect's directory of migrations.
func New(ctx context.Context, cfg *Config, migrations fs.FS, opts ...Option) (*DB, error) {
	db, err := Open(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if migrations != nil {
		if err := Migrate(ctx, db, migrations, "up"); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func Open(ctx context.Context, cfg *Config, opts ...Option) (*DB, error) {
	var (
		db  *DB
		err error
	)
	switch cfg.Dialect {
	case Postgres:
		db, err = openPostgres(ctx, cfg)
	case SQLite:
		db, err = openSQLite(cfg)
	case MySQL:
		db, err = openMySQL(cfg)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", cfg.Dialect)
	}
	if err != nil {
		return nil, err
	}
	db.log = zap.NewNop()
	for _, opt := range opts {
		opt(db)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout+time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping")
	}
	return db, nil
}

func openPostgres(ctx context.Context, cfg *Config) (*DB, error) {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     cfg.NameDB,
		RawQuery: "sslmode=disable",
	}
	poolCfg, err := pgxpool.ParseConfig(dsn.String())
	if err != nil {
		return nil, errors.Wrap(err, "pgxpool.ParseConfig")
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, "pgxpool.NewWithConfig")
	}
	return &DB{
		DB:      sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"),
		Dialect: Postgres,
		pool:    pool,
	}, nil
}

func openSQLite(cfg *Config) (*DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create db dir")
		}
	}
	// Writers take the lock on BEGIN so conditional updates never race on upgrade.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1&_txlock=immediate&_journal_mode=WAL", cfg.Path)
	db, err := sqlx.Open(string(SQLite), dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1)
	return &DB{DB: db, Dialect: SQLite}, nil
}

func openMySQL(cfg *Config) (*DB, error) {
	db, err := sqlx.Open(string(MySQL), mysqlDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}
	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	return &DB{DB: db, Dialect: MySQL}, nil
}

// mysqlDSN asks the server for matched rather than changed rows, so that
// RowsAffected of an UPDATE rewriting identical values is still 1.
func mysqlDSN(cfg *Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&clientFoundRows=true&timeout=%s",
		cfg.Username, cfg.Password, net.JoinHostPort(cfg.Host, cfg.Port), cfg.NameDB, cfg.ConnectTimeout)
}

// gooseLogger adapts zap to goose.Logger.
type gooseLogger struct {
	log *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatalf(strings.TrimSuffix(format, "\n"), v...)
}

func (db *DB) useGooseLogger() {
	log := db.log
	if log == nil {
		log = zap.NewNop()
	}
	goose.SetLogger(gooseLogger{log: log.Named("goose").Sugar()})
}

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// Migrate runs a goose command ("up", "down", "status") using the SQL files
// in the dialect-named directory of migrations.
func Migrate(ctx context.Context, db *DB, migrations fs.FS, command string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	db.useGooseLogger()
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(string(db.Dialect)); err != nil {
		return errors.Wrap(err, "goose.SetDialect")
	}
	if err := goose.RunContext(ctx, command, db.DB.DB, string(db.Dialect)); err != nil {
		return errors.Wrapf(err, "goose %s", command)
	}
	return nil
}

// Version returns the applied migration version.
func Version(db *DB) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	db.useGooseLogger()
	if err := goose.SetDialect(string(db.Dialect)); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(db.DB.DB)
}

// WithTx runs fn inside a transaction. The transaction is rolled back unless
// fn returns nil and the commit succeeds.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

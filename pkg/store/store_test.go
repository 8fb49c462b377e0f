package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMySQLDSN(t *testing.T) {
	t.Parallel()
	dsn := mysqlDSN(&Config{
		Host:           "db",
		Port:           "3306",
		Username:       "library",
		Password:       "secret",
		NameDB:         "library",
		ConnectTimeout: 5 * time.Second,
	})
	require.Equal(t, "library:secret@tcp(db:3306)/library?parseTime=true&loc=UTC&clientFoundRows=true&timeout=5s", dsn)
}

func TestMigrate_LogsThroughZap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	migrations := fstest.MapFS{
		"sqlite3/00001_notes.sql": &fstest.MapFile{Data: []byte(
			"-- +goose Up\ncreate table notes (id integer primary key);\n\n-- +goose Down\ndrop table notes;\n",
		)},
	}
	core, logs := observer.New(zapcore.InfoLevel)

	db, err := New(ctx, &Config{
		Dialect:        SQLite,
		Path:           filepath.Join(t.TempDir(), "notes.db"),
		ConnectTimeout: time.Second,
	}, migrations, WithLogger(zap.New(core)))
	require.NoError(t, err)
	defer db.Close()

	goose := logs.FilterLoggerName("goose").All()
	require.NotEmpty(t, goose)
	found := false
	for _, e := range goose {
		found = found || strings.Contains(e.Message, "00001_notes.sql")
	}
	require.True(t, found, "applied migration is logged")

	version, err := Version(db)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)
}

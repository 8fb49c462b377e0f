package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestOpenSink(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "stdout", path: ""},
		{name: "file", path: filepath.Join(dir, "library.log")},
		{name: "missing dir", path: filepath.Join(dir, "missing", "library.log"), wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ws, err := openSink(tt.path)
			require.NotNil(t, ws)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewLogger_FileSink(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "library.log")

	log := NewLogger(Log{LogLevel: zapcore.InfoLevel, Sink: path}, "library")
	log.Info("borrowed", zap.Int64("book_id", 7))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"logger":"library"`)
	require.Contains(t, string(data), `"msg":"borrowed"`)
}

func TestNewLogger_WarnsOnFallback(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "missing", "library.log")

	_, sinkErr := openSink(path)
	require.Error(t, sinkErr)

	// same path NewLogger takes, with stdout swapped for a buffer
	log := newLogger(Log{LogLevel: zapcore.InfoLevel}, zapcore.AddSync(&buf)).Named("library")
	warnSinkFallback(log, path, sinkErr)
	require.NoError(t, log.Sync())

	require.Contains(t, buf.String(), `"level":"WARN"`)
	require.Contains(t, buf.String(), "log sink unavailable")
	require.Contains(t, buf.String(), path)
}

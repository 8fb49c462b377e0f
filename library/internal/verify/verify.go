// Package verify prints a setup checklist for a library deployment.
package verify

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"strings"

	"github.com/Astemirdum/library-catalog/library/config"
	"github.com/Astemirdum/library-catalog/pkg/store"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

var Tables = []string{"books", "members", "borrowings"}

type mark struct {
	ok, warn, fail string
}

var (
	glyphMarks = mark{ok: "✓", warn: "⚠", fail: "✗"}
	plainMarks = mark{ok: "[ok]", warn: "[warn]", fail: "[fail]"}
)

type checklist struct {
	w      io.Writer
	marks  mark
	failed int
}

func newChecklist(w io.Writer) *checklist {
	marks := plainMarks
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		marks = glyphMarks
	}
	return &checklist{w: w, marks: marks}
}

func (c *checklist) section(title string) {
	fmt.Fprintf(c.w, "\n%s\n%s\n", title, strings.Repeat("-", 60))
}

func (c *checklist) ok(format string, args ...interface{}) {
	fmt.Fprintf(c.w, "  %s %s\n", c.marks.ok, fmt.Sprintf(format, args...))
}

func (c *checklist) warn(format string, args ...interface{}) {
	fmt.Fprintf(c.w, "  %s %s\n", c.marks.warn, fmt.Sprintf(format, args...))
}

func (c *checklist) fail(format string, args ...interface{}) {
	c.failed++
	fmt.Fprintf(c.w, "  %s %s\n", c.marks.fail, fmt.Sprintf(format, args...))
}

// Run checks the configuration, the store and the event bus and lists the
// API routes. It writes the checklist to w and fails if any check failed.
// Migrations are not applied.
func Run(ctx context.Context, w io.Writer, cfg *config.Config, routes []*echo.Route) error {
	c := newChecklist(w)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "Library Catalog - Setup Check")
	fmt.Fprintln(w, strings.Repeat("=", 60))

	c.section("Configuration")
	c.ok("HTTP address: %s", net.JoinHostPort(cfg.Server.Host, cfg.Server.Port))
	c.ok("Loan period: %d days", cfg.Catalog.LoanDays())
	c.ok("Seed on start: %t", cfg.Catalog.Seed)
	switch dir := cfg.Catalog.WebDir; {
	case dir == "":
		c.warn("Front-end: not configured")
	default:
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			c.fail("Front-end: %s not found", dir)
		} else {
			c.ok("Front-end: %s", dir)
		}
	}

	c.section("Database")
	checkStore(ctx, c, &cfg.Database)

	c.section("Events")
	if cfg.Kafka.Enabled() {
		c.ok("Kafka brokers: %s (topic %s)", strings.Join(cfg.Kafka.Addrs, ","), cfg.Kafka.Topic)
	} else {
		c.warn("Kafka: not configured, borrow/return events are dropped")
	}

	c.section("Endpoints")
	for _, r := range sortRoutes(routes) {
		fmt.Fprintf(w, "  %-7s %s\n", r.Method, r.Path)
	}

	fmt.Fprintln(w)
	if c.failed > 0 {
		return errors.Errorf("%d check(s) failed", c.failed)
	}
	fmt.Fprintln(w, "All checks passed")
	return nil
}

func checkStore(ctx context.Context, c *checklist, cfg *store.Config) {
	target := cfg.Path
	if cfg.Dialect != store.SQLite {
		target = net.JoinHostPort(cfg.Host, cfg.Port) + "/" + cfg.NameDB
	}
	if cfg.Dialect == store.SQLite {
		if _, err := os.Stat(cfg.Path); err != nil {
			c.fail("Database file %s: %v", cfg.Path, err)
			return
		}
	}

	db, err := store.Open(ctx, cfg)
	if err != nil {
		c.fail("Connect %s (%s): %v", cfg.Dialect, target, err)
		return
	}
	defer db.Close()
	c.ok("Connected: %s (%s)", cfg.Dialect, target)

	version, err := store.Version(db)
	if err != nil {
		c.fail("Migration version: %v", err)
	} else {
		c.ok("Migration version: %d", version)
	}

	qb := db.Builder()
	for _, table := range Tables {
		query, args, err := qb.Select("COUNT(*)").From(table).ToSql()
		if err != nil {
			c.fail("Table '%s': %v", table, err)
			continue
		}
		var n int64
		if err := db.GetContext(ctx, &n, query, args...); err != nil {
			c.fail("Table '%s' missing: %v", table, err)
			continue
		}
		c.ok("Table '%s': %d records", table, n)
	}
}

func sortRoutes(routes []*echo.Route) []*echo.Route {
	out := make([]*echo.Route, 0, len(routes))
	for _, r := range routes {
		// echo registers catch-all routes for its own 404/405 handling
		if r.Method == echo.RouteNotFound {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

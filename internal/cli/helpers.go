package cli

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ilya-bc/backstage/internal/backend"
	"github.com/ilya-bc/backstage/internal/config"
	"github.com/ilya-bc/backstage/internal/visits"
)

// loadConfig resolves the config file, honoring --config when set.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		return config.LoadOrCreateAt(globals.Config)
	}
	return config.LoadOrCreate()
}

// openBackend builds the configured persistence backend. The returned
// cleanup releases any underlying resources and is safe to call once.
func openBackend(cfg *config.Config) (visits.Backend, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case "memory":
		return backend.NewMemory(), noop, nil

	case "file":
		dir, err := cfg.DataDir()
		if err != nil {
			return nil, nil, err
		}
		return backend.NewFile(filepath.Join(dir, cfg.Storage.VisitsFile)), noop, nil

	case "sqlite":
		dir, err := cfg.DataDir()
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}

		dbPath := filepath.Join(dir, cfg.Storage.SQLiteFile)
		db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}

		runner := backend.NewMigrationRunner(db)
		if err := runner.Run(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}

		s, err := backend.NewSQLite(db)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("init sqlite backend: %w", err)
		}
		return s, func() { s.Close(); db.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// openStore builds the configured backend and a visit store on top of it.
func openStore(globals *GlobalFlags) (*visits.Store, func(), error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, nil, err
	}

	b, cleanup, err := openBackend(cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := visits.NewStore(b, visits.WithLimit(cfg.Visits.Limit))
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return store, cleanup, nil
}

// parseOrderBy parses a sort key like "name", "name:asc" or "timestamp:desc".
func parseOrderBy(s string) (visits.OrderBy, error) {
	field, dir, hasDir := strings.Cut(s, ":")
	key := visits.OrderBy{Field: visits.Field(field)}
	if hasDir {
		switch dir {
		case "asc":
		case "desc":
			key.Descending = true
		default:
			return visits.OrderBy{}, fmt.Errorf("sort key %q: direction must be asc or desc", s)
		}
	}
	return key, nil
}

// filterOps maps CLI tokens to query operators, longest tokens first so
// ">=" wins over ">".
var filterOps = []struct {
	token string
	op    visits.Operator
}{
	{">=", visits.OpGreaterEq},
	{"<=", visits.OpLessEq},
	{"==", visits.OpEqual},
	{">", visits.OpGreater},
	{"<", visits.OpLess},
	{"~", visits.OpContains},
}

// parseFilter parses a predicate like "hits>=2", "name~Odd" (~ is contains)
// or "entityRef==component:default/foo".
func parseFilter(s string) (visits.FilterExpr, error) {
	for _, o := range filterOps {
		i := strings.Index(s, o.token)
		if i <= 0 {
			continue
		}

		field := visits.Field(strings.TrimSpace(s[:i]))
		raw := strings.TrimSpace(s[i+len(o.token):])

		var value interface{} = raw
		if field.IsNumeric() {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return visits.FilterExpr{}, fmt.Errorf("filter %q: %s takes an integer value", s, field)
			}
			value = n
		}
		return visits.FilterExpr{Field: field, Op: o.op, Value: value}, nil
	}
	return visits.FilterExpr{}, fmt.Errorf("filter %q: expected field<op>value with op one of >= <= == > < ~", s)
}

// formatMillis renders an epoch-millisecond timestamp for humans.
func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04:05")
}

// Package catalogue reads cohort identification configurations from a
// catalogue database. All relevant tables are loaded in one pass and the
// configuration trees are assembled in memory, so rendering never touches the
// connection.
package catalogue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/specialistvlad/cicrender/internal/cohort"
	"github.com/specialistvlad/cicrender/internal/ctxlog"

	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLServer = "sqlserver"
	DriverSQLite    = "sqlite"
)

var (
	// ErrUnknownDriver is returned by Open for drivers other than the supported ones.
	ErrUnknownDriver = errors.New("unknown catalogue driver")
	// ErrContainerCycle is returned when a container or filter container
	// (indirectly) contains itself.
	ErrContainerCycle = errors.New("container cycle in catalogue")
	// ErrCatalogueNotFound is returned by Open when a sqlite catalogue file
	// does not exist.
	ErrCatalogueNotFound = errors.New("catalogue file not found")
)

// Options describe how to reach the catalogue.
type Options struct {
	Driver   string
	DSN      string // takes precedence over the fields below
	Server   string
	Database string
	User     string
	Password string
}

// Store is the catalogue implementation of cohort.Source.
type Store struct {
	db      *sql.DB
	driver  string
	builder squirrel.StatementBuilderType
}

var _ cohort.Source = (*Store)(nil)

// Open connects to the catalogue and verifies the connection. A sqlite
// catalogue is opened read-only and must already exist.
func Open(ctx context.Context, opts Options) (*Store, error) {
	dsn, err := opts.dataSourceName()
	if err != nil {
		return nil, err
	}
	if opts.Driver == DriverSQLite && opts.DSN == "" {
		if _, err := os.Stat(opts.Database); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrCatalogueNotFound, opts.Database)
			}
			return nil, fmt.Errorf("failed to access catalogue file %s: %w", opts.Database, err)
		}
	}

	db, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s catalogue: %w", opts.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s catalogue: %w", opts.Driver, err)
	}

	ctxlog.FromContext(ctx).Debug("Catalogue connection established.",
		"driver", opts.Driver, "server", opts.Server, "database", opts.Database)
	return New(db, opts.Driver)
}

// New wraps an already open database handle.
func New(db *sql.DB, driver string) (*Store, error) {
	var placeholder squirrel.PlaceholderFormat
	switch driver {
	case DriverSQLServer:
		placeholder = squirrel.AtP
	case DriverSQLite:
		placeholder = squirrel.Question
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	return &Store{
		db:      db,
		driver:  driver,
		builder: squirrel.StatementBuilder.PlaceholderFormat(placeholder),
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// quote quotes an identifier that collides with a reserved word.
func (s *Store) quote(ident string) string {
	if s.driver == DriverSQLServer {
		return "[" + ident + "]"
	}
	return `"` + ident + `"`
}

func (o Options) dataSourceName() (string, error) {
	switch o.Driver {
	case DriverSQLServer:
		if o.DSN != "" {
			return o.DSN, nil
		}
		if o.Server == "" || o.Database == "" {
			return "", errors.New("sqlserver catalogue needs a server and a database")
		}
		u := &url.URL{Scheme: "sqlserver"}
		// A named instance is written host\instance and travels as the URL path.
		host, instance, _ := strings.Cut(o.Server, `\`)
		u.Host = host
		if instance != "" {
			u.Path = "/" + instance
		}
		if o.User != "" {
			u.User = url.UserPassword(o.User, o.Password)
		}
		q := url.Values{}
		q.Set("database", o.Database)
		q.Set("app name", "cicrender")
		u.RawQuery = q.Encode()
		return u.String(), nil
	case DriverSQLite:
		if o.DSN != "" {
			return o.DSN, nil
		}
		if o.Database == "" {
			return "", errors.New("sqlite catalogue needs a database file")
		}
		return "file:" + o.Database + "?mode=ro", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, o.Driver)
	}
}

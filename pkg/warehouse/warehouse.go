// Package warehouse executes validated query descriptors against the remote
// warehouse. Every call acquires its own connection, is bounded by a
// timeout, and returns a structured outcome; failures never propagate as
// raised errors past this package.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/trinodb/trino-go-client/trino"

	// Registers the postgres driver used for development warehouses.
	_ "github.com/lib/pq"

	"github.com/anagilla/retail-lakehouse-demo/pkg/query"
)

// Driver names accepted by Open.
const (
	DriverTrino    = "trino"
	DriverPostgres = "postgres"
)

const (
	// defaultQueryTimeout bounds a query when the caller passes no timeout.
	defaultQueryTimeout = 30 * time.Second

	// defaultMaxOpenConns caps concurrent warehouse connections.
	defaultMaxOpenConns = 8

	// defaultUser identifies the dashboard to the warehouse when the
	// configuration names no user.
	defaultUser = "dashboard"

	// querySource tags submitted queries in the warehouse's query history.
	querySource = "retail-dashboard"
)

// Config configures the warehouse connection.
type Config struct {
	Driver string `yaml:"driver"` // "trino", "postgres"

	// Host is the warehouse endpoint URL for the trino driver,
	// e.g. "https://warehouse.example.com:443".
	Host       string `yaml:"host"`
	User       string `yaml:"user"`
	Credential string `yaml:"credential"`
	Catalog    string `yaml:"catalog"`
	Schema     string `yaml:"schema"`

	// DSN is the full connection string for the postgres driver.
	DSN string `yaml:"dsn"`

	QueryTimeout time.Duration `yaml:"query_timeout"`
	MaxOpenConns int           `yaml:"max_open_conns"`
}

// Executor runs descriptors against the warehouse. It holds a pooled
// database handle and no other state; calls are independent and safe to
// issue concurrently.
type Executor struct {
	db          *sql.DB
	timeout     time.Duration
	placeholder sq.PlaceholderFormat
}

// Open creates an executor connected to the configured warehouse.
func Open(cfg Config) (*Executor, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	cfg = applyDefaults(cfg)

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	return &Executor{
		db:          db,
		timeout:     cfg.QueryTimeout,
		placeholder: placeholderFor(cfg.Driver),
	}, nil
}

// NewFromDB wraps an existing database handle. Used by tests and callers
// that manage their own pool configuration.
func NewFromDB(db *sql.DB, driverName string) *Executor {
	return &Executor{
		db:          db,
		timeout:     defaultQueryTimeout,
		placeholder: placeholderFor(driverName),
	}
}

// Validate checks that the configuration names a usable driver and
// endpoint. Open performs the same checks; Validate lets callers fail
// fast before connecting.
func (c Config) Validate() error {
	return validateConfig(c)
}

// validateConfig validates the required configuration fields.
func validateConfig(cfg Config) error {
	switch cfg.Driver {
	case DriverTrino:
		if cfg.Host == "" {
			return fmt.Errorf("warehouse host is required for the trino driver")
		}
	case DriverPostgres:
		if cfg.DSN == "" {
			return fmt.Errorf("warehouse dsn is required for the postgres driver")
		}
	case "":
		return fmt.Errorf("warehouse driver is required")
	default:
		return fmt.Errorf("unknown warehouse driver: %s", cfg.Driver)
	}
	if cfg.QueryTimeout < 0 {
		return fmt.Errorf("warehouse query_timeout must not be negative")
	}
	return nil
}

// applyDefaults applies default values to the configuration.
func applyDefaults(cfg Config) Config {
	if cfg.User == "" {
		cfg.User = defaultUser
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = defaultQueryTimeout
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = defaultMaxOpenConns
	}
	return cfg
}

// buildDSN renders the driver-specific connection string.
func buildDSN(cfg Config) (string, error) {
	switch cfg.Driver {
	case DriverTrino:
		return trinoDSN(cfg)
	default:
		return cfg.DSN, nil
	}
}

// trinoDSN builds a Trino DSN with the credential carried in the server
// URI's userinfo, the way the driver expects token auth.
func trinoDSN(cfg Config) (string, error) {
	u, err := url.Parse(cfg.Host)
	if err != nil {
		return "", fmt.Errorf("parsing warehouse host: %w", err)
	}
	if cfg.Credential != "" {
		u.User = url.UserPassword(cfg.User, cfg.Credential)
	} else {
		u.User = url.User(cfg.User)
	}

	tc := trino.Config{
		ServerURI: u.String(),
		Source:    querySource,
		Catalog:   cfg.Catalog,
		Schema:    cfg.Schema,
	}
	dsn, err := tc.FormatDSN()
	if err != nil {
		return "", fmt.Errorf("building trino DSN: %w", err)
	}
	return dsn, nil
}

// placeholderFor returns the bind placeholder format for a driver.
func placeholderFor(driverName string) sq.PlaceholderFormat {
	if driverName == DriverPostgres {
		return sq.Dollar
	}
	return sq.Question
}

// Execute runs one descriptor and returns its outcome. A zero timeout
// applies the executor default. The call acquires a connection from the
// pool, submits the rendered query, and normalizes the rows; the
// connection is released on every exit path. On timeout the caller
// proceeds with a timeout outcome while server-side cancellation remains
// best-effort through context propagation to the driver.
func (e *Executor) Execute(ctx context.Context, desc *query.Descriptor, timeout time.Duration) query.Outcome {
	if timeout <= 0 {
		timeout = e.timeout
	}
	queryID := uuid.NewString()
	start := time.Now()

	queriesInFlight.Inc()
	defer queriesInFlight.Dec()

	sqlText, args, err := desc.SQL(e.placeholder)
	if err != nil {
		return e.failure(desc.Dataset(), queryID, start, query.ExecutionError, fmt.Errorf("rendering query: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return e.failure(desc.Dataset(), queryID, start, classifyCtx(ctx, err), err)
	}
	defer func() { _ = conn.Close() }()

	rows, err := conn.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return e.failure(desc.Dataset(), queryID, start, classifyCtx(ctx, err), err)
	}
	defer func() { _ = rows.Close() }()

	rs, err := normalize(rows)
	if err != nil {
		return e.failure(desc.Dataset(), queryID, start, classifyCtx(ctx, err), err)
	}

	duration := time.Since(start)
	queriesTotal.WithLabelValues(desc.Dataset(), outcomeSuccess).Inc()
	queryDuration.WithLabelValues(desc.Dataset()).Observe(duration.Seconds())
	slog.Debug("warehouse: query completed",
		"query_id", queryID,
		"dataset", desc.Dataset(),
		"rows", rs.Count(),
		"duration_ms", duration.Milliseconds())

	return query.Success(rs)
}

// failure records and returns a failed outcome.
func (e *Executor) failure(datasetName, queryID string, start time.Time, kind query.ErrorKind, err error) query.Outcome {
	duration := time.Since(start)
	queriesTotal.WithLabelValues(datasetName, string(kind)).Inc()
	queryDuration.WithLabelValues(datasetName).Observe(duration.Seconds())
	slog.Warn("warehouse: query failed",
		"query_id", queryID,
		"dataset", datasetName,
		"kind", string(kind),
		"error", err,
		"duration_ms", duration.Milliseconds())

	return query.Failure(&query.ErrorDetail{
		Kind:    kind,
		Message: err.Error(),
		Dataset: datasetName,
	})
}

// Ping verifies warehouse connectivity. Used by the readiness probe.
func (e *Executor) Ping(ctx context.Context) error {
	if err := e.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging warehouse: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (e *Executor) Close() error {
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("closing warehouse connection: %w", err)
	}
	return nil
}

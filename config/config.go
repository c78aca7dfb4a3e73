package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/neonaddict/scanbench/bench"
)

// AdapterType selects the PostgreSQL handle the store runs on.
type AdapterType string

// Supported adapter types.
const (
	AdapterPGXPool AdapterType = "pgx.pool"
	AdapterSQLDB   AdapterType = "sql.db"
	AdapterSQLXDB  AdapterType = "sqlx.db"
)

// ParseAdapterType maps a string to an AdapterType. The empty string selects pgx.pool.
func ParseAdapterType(s string) (AdapterType, error) {
	switch AdapterType(s) {
	case "", AdapterPGXPool:
		return AdapterPGXPool, nil
	case AdapterSQLDB:
		return AdapterSQLDB, nil
	case AdapterSQLXDB:
		return AdapterSQLXDB, nil
	default:
		return "", fmt.Errorf("%w: unsupported adapter type %q", bench.ErrInvalidConfig, s)
	}
}

const (
	defaultHost           = "localhost"
	defaultPort           = 5432
	defaultUser           = "postgres"
	defaultPassword       = "password"
	defaultDatabase       = "postgres"
	defaultSSLMode        = "disable"
	defaultMaxConns       = int32(10)
	defaultConnectTimeout = 5 * time.Second
	defaultUserCount      = 50
	defaultLeafPerUser    = 100
	defaultRuns           = 1
)

// Postgres holds the connection target and pool sizing.
type Postgres struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// MaxConns bounds the shared handle used by the shared-memory phase.
	// 1 forces all workers onto a single connection.
	MaxConns       int32
	ConnectTimeout time.Duration
}

// Features enumerates the optional capabilities of a run.
type Features struct {
	// SimpleProtocol makes pgx use the simple query protocol without a statement cache.
	SimpleProtocol bool

	// AnalyzeAfterSeed runs VACUUM ANALYZE over the seeded tables before the phases.
	AnalyzeAfterSeed bool

	// VerifyCounts checks every scan against the seeded row count after both phases.
	VerifyCounts bool
}

// Config is the complete harness configuration.
type Config struct {
	Postgres Postgres
	Adapter  AdapterType
	Seed     bench.SeedParams
	Features Features

	// Runs is the number of full provision, seed and measure cycles.
	Runs int
}

// Default returns the configuration of the original fixture: a local PostgreSQL,
// 50 users and 100 rows per leaf table per user.
func Default() Config {
	return Config{
		Postgres: Postgres{
			Host:           defaultHost,
			Port:           defaultPort,
			User:           defaultUser,
			Password:       defaultPassword,
			Database:       defaultDatabase,
			SSLMode:        defaultSSLMode,
			MaxConns:       defaultMaxConns,
			ConnectTimeout: defaultConnectTimeout,
		},
		Adapter: AdapterPGXPool,
		Seed: bench.SeedParams{
			UserCount:   defaultUserCount,
			LeafPerUser: defaultLeafPerUser,
		},
		Runs: defaultRuns,
	}
}

// Validate checks the configuration and reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	if c.Postgres.Host == "" {
		errs = append(errs, errors.New("postgres host is required"))
	}
	if c.Postgres.Port < 1 || c.Postgres.Port > 65535 {
		errs = append(errs, fmt.Errorf("postgres port %d out of range", c.Postgres.Port))
	}
	if c.Postgres.Database == "" {
		errs = append(errs, errors.New("postgres database is required"))
	}
	if c.Postgres.MaxConns < 1 {
		errs = append(errs, fmt.Errorf("max connections must be at least 1, got %d", c.Postgres.MaxConns))
	}
	if _, err := ParseAdapterType(string(c.Adapter)); err != nil {
		errs = append(errs, err)
	}
	if err := c.Seed.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Runs < 1 {
		errs = append(errs, fmt.Errorf("runs must be at least 1, got %d", c.Runs))
	}

	if len(errs) == 0 {
		return nil
	}

	return errors.Join(append([]error{bench.ErrInvalidConfig}, errs...)...)
}

// DSN renders the connection target as a postgres:// URL understood by pgx and lib/pq.
func (p Postgres) DSN() string {
	query := url.Values{}
	if p.SSLMode != "" {
		query.Set("sslmode", p.SSLMode)
	}
	if p.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(int(math.Ceil(p.ConnectTimeout.Seconds()))))
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.Database,
		RawQuery: query.Encode(),
	}

	return u.String()
}

// Redacted returns the DSN with the password masked, for logging.
func (p Postgres) Redacted() string {
	masked := p
	if masked.Password != "" {
		masked.Password = "xxxxx"
	}

	return masked.DSN()
}

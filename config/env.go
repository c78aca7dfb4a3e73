package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/neonaddict/scanbench/bench"
)

// Environment variable names read by FromEnv and written by Environ.
const (
	EnvDSN              = "SCANBENCH_DSN"
	EnvHost             = "SCANBENCH_PG_HOST"
	EnvPort             = "SCANBENCH_PG_PORT"
	EnvUser             = "SCANBENCH_PG_USER"
	EnvPassword         = "SCANBENCH_PG_PASSWORD"
	EnvDatabase         = "SCANBENCH_PG_DATABASE"
	EnvSSLMode          = "SCANBENCH_PG_SSLMODE"
	EnvMaxConns         = "SCANBENCH_PG_MAX_CONNS"
	EnvConnectTimeout   = "SCANBENCH_PG_CONNECT_TIMEOUT"
	EnvAdapterType      = "SCANBENCH_ADAPTER_TYPE"
	EnvUserCount        = "SCANBENCH_USER_COUNT"
	EnvLeafPerUser      = "SCANBENCH_LEAF_PER_USER"
	EnvRuns             = "SCANBENCH_RUNS"
	EnvSimpleProtocol   = "SCANBENCH_SIMPLE_PROTOCOL"
	EnvAnalyzeAfterSeed = "SCANBENCH_ANALYZE_AFTER_SEED"
	EnvVerifyCounts     = "SCANBENCH_VERIFY_COUNTS"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv returns Default overridden by the SCANBENCH_* process environment.
func FromEnv() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup returns Default overridden by the variables lookup yields.
// SCANBENCH_DSN is applied first, the individual SCANBENCH_PG_* variables win over it.
func FromLookup(lookup LookupFunc) (Config, error) {
	cfg := Default()
	env := envReader{lookup: lookup}

	if dsn, ok := lookup(EnvDSN); ok && dsn != "" {
		if err := cfg.Postgres.applyDSN(dsn); err != nil {
			env.errs = append(env.errs, err)
		}
	}

	env.readString(EnvHost, &cfg.Postgres.Host)
	env.readInt(EnvPort, &cfg.Postgres.Port)
	env.readString(EnvUser, &cfg.Postgres.User)
	env.readString(EnvPassword, &cfg.Postgres.Password)
	env.readString(EnvDatabase, &cfg.Postgres.Database)
	env.readString(EnvSSLMode, &cfg.Postgres.SSLMode)
	env.readInt32(EnvMaxConns, &cfg.Postgres.MaxConns)
	env.readDuration(EnvConnectTimeout, &cfg.Postgres.ConnectTimeout)
	env.readInt(EnvUserCount, &cfg.Seed.UserCount)
	env.readInt(EnvLeafPerUser, &cfg.Seed.LeafPerUser)
	env.readInt(EnvRuns, &cfg.Runs)
	env.readBool(EnvSimpleProtocol, &cfg.Features.SimpleProtocol)
	env.readBool(EnvAnalyzeAfterSeed, &cfg.Features.AnalyzeAfterSeed)
	env.readBool(EnvVerifyCounts, &cfg.Features.VerifyCounts)

	if raw, ok := lookup(EnvAdapterType); ok {
		adapter, err := ParseAdapterType(raw)
		if err != nil {
			env.errs = append(env.errs, err)
		}
		cfg.Adapter = adapter
	}

	if len(env.errs) > 0 {
		return Config{}, errors.Join(append([]error{bench.ErrInvalidConfig}, env.errs...)...)
	}

	return cfg, nil
}

// Environ renders the configuration as KEY=value pairs that FromLookup reads back unchanged.
func (c Config) Environ() []string {
	return []string{
		EnvHost + "=" + c.Postgres.Host,
		EnvPort + "=" + strconv.Itoa(c.Postgres.Port),
		EnvUser + "=" + c.Postgres.User,
		EnvPassword + "=" + c.Postgres.Password,
		EnvDatabase + "=" + c.Postgres.Database,
		EnvSSLMode + "=" + c.Postgres.SSLMode,
		EnvMaxConns + "=" + strconv.FormatInt(int64(c.Postgres.MaxConns), 10),
		EnvConnectTimeout + "=" + c.Postgres.ConnectTimeout.String(),
		EnvAdapterType + "=" + string(c.Adapter),
		EnvUserCount + "=" + strconv.Itoa(c.Seed.UserCount),
		EnvLeafPerUser + "=" + strconv.Itoa(c.Seed.LeafPerUser),
		EnvRuns + "=" + strconv.Itoa(c.Runs),
		EnvSimpleProtocol + "=" + strconv.FormatBool(c.Features.SimpleProtocol),
		EnvAnalyzeAfterSeed + "=" + strconv.FormatBool(c.Features.AnalyzeAfterSeed),
		EnvVerifyCounts + "=" + strconv.FormatBool(c.Features.VerifyCounts),
	}
}

// applyDSN copies host, port, credentials and database out of a connection string.
func (p *Postgres) applyDSN(dsn string) error {
	parsed, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse %s: %w", EnvDSN, err)
	}

	p.Host = parsed.Host
	p.Port = int(parsed.Port)
	p.User = parsed.User
	p.Password = parsed.Password
	p.Database = parsed.Database
	if parsed.ConnectTimeout > 0 {
		p.ConnectTimeout = parsed.ConnectTimeout
	}

	p.SSLMode = defaultSSLMode
	if mode, ok := sslModeFromDSN(dsn); ok {
		p.SSLMode = mode
	}

	return nil
}

// sslModeFromDSN returns the sslmode written in a URL or keyword/value connection string.
// pgconn only exposes the resulting TLS configs, which cannot tell prefer from require.
func sslModeFromDSN(dsn string) (string, bool) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		parsed, err := url.Parse(dsn)
		if err != nil {
			return "", false
		}

		mode := parsed.Query().Get("sslmode")

		return mode, mode != ""
	}

	for _, field := range strings.Fields(dsn) {
		key, value, found := strings.Cut(field, "=")
		if !found || strings.TrimSpace(key) != "sslmode" {
			continue
		}

		value = strings.Trim(value, "'")

		return value, value != ""
	}

	return "", false
}

type envReader struct {
	lookup LookupFunc
	errs   []error
}

func (r *envReader) readString(key string, dst *string) {
	if v, ok := r.lookup(key); ok {
		*dst = v
	}
}

func (r *envReader) readInt(key string, dst *int) {
	v, ok := r.lookup(key)
	if !ok {
		return
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return
	}

	*dst = n
}

func (r *envReader) readInt32(key string, dst *int32) {
	v, ok := r.lookup(key)
	if !ok {
		return
	}

	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return
	}

	*dst = int32(n)
}

func (r *envReader) readBool(key string, dst *bool) {
	v, ok := r.lookup(key)
	if !ok {
		return
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return
	}

	*dst = b
}

func (r *envReader) readDuration(key string, dst *time.Duration) {
	v, ok := r.lookup(key)
	if !ok {
		return
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return
	}

	*dst = d
}

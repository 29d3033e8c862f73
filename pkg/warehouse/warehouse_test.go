package warehouse

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testHost       = "https://warehouse.example.com:443"
	testDSN        = "postgres://dashboard@localhost:5432/retail?sslmode=disable"
	testCredential = "s3cret"
)

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid trino",
			cfg:  Config{Driver: DriverTrino, Host: testHost},
		},
		{
			name: "valid postgres",
			cfg:  Config{Driver: DriverPostgres, DSN: testDSN},
		},
		{
			name:    "trino without host",
			cfg:     Config{Driver: DriverTrino},
			wantErr: "host is required",
		},
		{
			name:    "postgres without dsn",
			cfg:     Config{Driver: DriverPostgres},
			wantErr: "dsn is required",
		},
		{
			name:    "missing driver",
			cfg:     Config{},
			wantErr: "driver is required",
		},
		{
			name:    "unknown driver",
			cfg:     Config{Driver: "sqlite"},
			wantErr: "unknown warehouse driver",
		},
		{
			name:    "negative timeout",
			cfg:     Config{Driver: DriverTrino, Host: testHost, QueryTimeout: -1},
			wantErr: "must not be negative",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateConfig(tc.cfg)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Run("fills zero values", func(t *testing.T) {
		cfg := applyDefaults(Config{Driver: DriverTrino, Host: testHost})
		assert.Equal(t, defaultUser, cfg.User)
		assert.Equal(t, defaultQueryTimeout, cfg.QueryTimeout)
		assert.Equal(t, defaultMaxOpenConns, cfg.MaxOpenConns)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		cfg := applyDefaults(Config{
			Driver:       DriverTrino,
			Host:         testHost,
			User:         "svc-analytics",
			QueryTimeout: defaultQueryTimeout * 2,
			MaxOpenConns: 2,
		})
		assert.Equal(t, "svc-analytics", cfg.User)
		assert.Equal(t, defaultQueryTimeout*2, cfg.QueryTimeout)
		assert.Equal(t, 2, cfg.MaxOpenConns)
	})
}

func TestTrinoDSN(t *testing.T) {
	t.Run("with credential", func(t *testing.T) {
		dsn, err := trinoDSN(Config{
			Driver:     DriverTrino,
			Host:       testHost,
			User:       "svc",
			Credential: testCredential,
			Catalog:    "main",
			Schema:     "retail_gold",
		})
		require.NoError(t, err)
		assert.Contains(t, dsn, "svc:"+testCredential+"@warehouse.example.com:443")
		assert.Contains(t, dsn, "source=retail-dashboard")
		assert.Contains(t, dsn, "catalog=main")
		assert.Contains(t, dsn, "schema=retail_gold")
	})

	t.Run("without credential", func(t *testing.T) {
		dsn, err := trinoDSN(Config{Driver: DriverTrino, Host: testHost, User: "svc"})
		require.NoError(t, err)
		assert.Contains(t, dsn, "svc@warehouse.example.com:443")
		assert.NotContains(t, dsn, ":"+testCredential)
	})

	t.Run("unparsable host", func(t *testing.T) {
		_, err := trinoDSN(Config{Driver: DriverTrino, Host: "https://bad host\x7f"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing warehouse host")
	})
}

func TestBuildDSN_PostgresPassthrough(t *testing.T) {
	dsn, err := buildDSN(Config{Driver: DriverPostgres, DSN: testDSN})
	require.NoError(t, err)
	assert.Equal(t, testDSN, dsn)
}

func TestPlaceholderFor(t *testing.T) {
	assert.Equal(t, sq.Dollar, placeholderFor(DriverPostgres))
	assert.Equal(t, sq.Question, placeholderFor(DriverTrino))
}

func TestOpen(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		exec, err := Open(Config{Driver: DriverPostgres, DSN: testDSN})
		require.NoError(t, err)
		require.NotNil(t, exec)
		assert.Equal(t, sq.Dollar, exec.placeholder)
		assert.NoError(t, exec.Close())
	})

	t.Run("trino", func(t *testing.T) {
		exec, err := Open(Config{Driver: DriverTrino, Host: testHost, Catalog: "main"})
		require.NoError(t, err)
		require.NotNil(t, exec)
		assert.Equal(t, sq.Question, exec.placeholder)
		assert.NoError(t, exec.Close())
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := Open(Config{Driver: DriverTrino})
		require.Error(t, err)
	})
}

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	got, err := migrateURL("postgres://app:secreto@db:5432/oficialia?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://app:secreto@db:5432/oficialia?sslmode=disable", got)

	got, err = migrateURL("postgresql://app@db/oficialia")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://app@db/oficialia", got)

	_, err = migrateURL("mysql://db/x")
	assert.Error(t, err)
}

func TestResolveIPv4_Literal(t *testing.T) {
	ip, err := resolveIPv4(context.Background(), "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", ip)

	_, err = resolveIPv4(context.Background(), "::1")
	assert.Error(t, err)
}

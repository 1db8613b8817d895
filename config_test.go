package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_DSN(t *testing.T) {
	t.Setenv("POSTGRES_USER", "stock")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "inventory")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")

	cfg, err := LoadConfig()
	assert.NoError(t, err)

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "user=stock")
	assert.Contains(t, dsn, "dbname=inventory")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestLoadConfig_IncompleteDatabaseSettings(t *testing.T) {
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "inventory")
	t.Setenv("POSTGRES_HOST", "db.internal")

	_, err := LoadConfig()
	assert.Error(t, err)
}

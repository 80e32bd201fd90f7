package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/shopreviews/catalog/internal/config"
	"github.com/shopreviews/catalog/internal/db"
	"github.com/shopreviews/catalog/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunWritesSeededCatalog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := &config.Config{ServiceName: "test", DBDriver: db.DriverSQLite, DBDSN: ":memory:", SeedDemo: true}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, zap.New(core), &out))

	var snap repo.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	require.Len(t, snap.Customers, 2)
	assert.Equal(t, []string{"Great", "Meh"}, snap.Customers[0].Reviews)
	assert.Len(t, snap.Items, 2)
	assert.Len(t, snap.Reviews, 4)

	written := logs.FilterMessage("Catalog written").All()
	require.Len(t, written, 1)
	fields := written[0].ContextMap()
	assert.Equal(t, int64(4), fields["reviews"])
	assert.Greater(t, fields["store_operations"], 0.0)
}

func TestRunEmptyCatalog(t *testing.T) {
	cfg := &config.Config{ServiceName: "test", DBDriver: db.DriverSQLite, DBDSN: ":memory:"}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, zap.NewNop(), &out))
	assert.JSONEq(t, `{"customers":[],"items":[],"reviews":[]}`, out.String())
}

func TestRunUnsupportedDriver(t *testing.T) {
	cfg := &config.Config{DBDriver: "oracle", DBDSN: "x"}

	var out bytes.Buffer
	err := run(context.Background(), cfg, zap.NewNop(), &out)
	assert.ErrorIs(t, err, db.ErrUnsupportedDriver)
	assert.Zero(t, out.Len())
}

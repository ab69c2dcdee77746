package metadata

import (
	"testing"
	"time"

	"github.com/SlpAus/plantify-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetValueUpserts(t *testing.T) {
	db := testutil.NewDB(t, &Metadata{})

	v, err := GetValue(db, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, SetValue(db, "k", "1"))
	require.NoError(t, SetValue(db, "k", "2"))
	v, err = GetValue(db, "k")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	var n int64
	require.NoError(t, db.Model(&Metadata{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestRecordMigration(t *testing.T) {
	db := testutil.NewDB(t, &Metadata{})

	state, err := GetMigrationState(db)
	require.NoError(t, err)
	assert.Equal(t, MigrationState{}, state)

	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.FixedZone("WIB", 7*3600))
	require.NoError(t, RecordMigration(db, "3", at))

	state, err = GetMigrationState(db)
	require.NoError(t, err)
	assert.Equal(t, "3", state.SchemaVersion)
	assert.Equal(t, "2025-06-01T02:30:00Z", state.MigratedAt)
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSplitStatements(t *testing.T) {
	script := `-- header; with semicolon
CREATE TABLE a (x TEXT);
INSERT INTO a VALUES ('semi;colon'), ('it''s');

INSERT INTO a VALUES ('z')`

	got := splitStatements(script)
	require.Len(t, got, 3)
	assert.Equal(t, "CREATE TABLE a (x TEXT)", got[0])
	assert.Equal(t, "INSERT INTO a VALUES ('semi;colon'), ('it''s')", got[1])
	assert.Equal(t, "INSERT INTO a VALUES ('z')", got[2])
}

func TestMigrateEmbedded(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "dixis.db"), Migrations(), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	applied, err := db.Applied(context.Background())
	require.NoError(t, err)

	files, err := MigrationFiles(Migrations())
	require.NoError(t, err)
	require.Len(t, applied, len(files))

	ran, err := db.Migrate(Migrations())
	require.NoError(t, err)
	assert.Empty(t, ran)

	var zones int
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM shipping_zones").Scan(&zones))
	assert.Equal(t, 4, zones)
}

func TestMigrateSkipsRecoverable(t *testing.T) {
	migrations := fstest.MapFS{
		"001_a.sql": {Data: []byte("CREATE TABLE t (a TEXT);")},
		"002_b.sql": {Data: []byte("ALTER TABLE t ADD COLUMN b TEXT; ALTER TABLE t ADD COLUMN b TEXT;")},
	}

	db, err := New(filepath.Join(t.TempDir(), "x.db"), migrations, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	applied, err := db.Applied(context.Background())
	require.NoError(t, err)
	assert.Len(t, applied, 2)
}

func TestWithTx(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "x.db"), fstest.MapFS{
		"001.sql": {Data: []byte("CREATE TABLE t (a INTEGER)")},
	}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	boom := errors.New("boom")

	err = WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO t VALUES (1)")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO t VALUES (2)")
		return err
	}))

	var sum int
	require.NoError(t, db.Conn.QueryRow("SELECT COALESCE(SUM(a), 0) FROM t").Scan(&sum))
	assert.Equal(t, 2, sum)
}

func TestInTx(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "x.db"), fstest.MapFS{
		"001.sql": {Data: []byte("CREATE TABLE t (a INTEGER)")},
	}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	n, err := InTx(ctx, db.Conn, func(tx *sql.Tx) (int64, error) {
		res, err := tx.ExecContext(ctx, "INSERT INTO t VALUES (1), (2)")
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = InTx(ctx, db.Conn, func(tx *sql.Tx) (int64, error) {
		_, err := tx.ExecContext(ctx, "INSERT INTO t VALUES (5)")
		require.NoError(t, err)
		return 1, errors.New("boom")
	})
	assert.Error(t, err)
	assert.Zero(t, n)

	assert.Panics(t, func() {
		_, _ = InTx(ctx, db.Conn, func(tx *sql.Tx) (int, error) {
			_, err := tx.ExecContext(ctx, "INSERT INTO t VALUES (7)")
			require.NoError(t, err)
			panic("halt")
		})
	})

	var sum int
	require.NoError(t, db.Conn.QueryRow("SELECT COALESCE(SUM(a), 0) FROM t").Scan(&sum))
	assert.Equal(t, 3, sum)
}

func TestFormatTime(t *testing.T) {
	athens, err := time.LoadLocation("Europe/Athens")
	require.NoError(t, err)

	ts := time.Date(2024, 7, 1, 3, 0, 0, 0, athens)
	assert.Equal(t, "2024-07-01 00:00:00", FormatTime(ts))

	back, err := ParseTime("2024-07-01 00:00:00")
	require.NoError(t, err)
	assert.True(t, back.Equal(ts))
	assert.Nil(t, FormatTimePtr(nil))
}

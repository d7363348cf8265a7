package session

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/sanes/internal/client/models"
	"github.com/dmitrijs2005/sanes/internal/common"
	"github.com/dmitrijs2005/sanes/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func rawValue(t *testing.T, db *sql.DB, key string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return nil
	}
	require.NoError(t, err)
	return v
}

func insertRaw(t *testing.T, db *sql.DB, key string, v []byte) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO metadata(key, value) VALUES (?, ?)`, key, v)
	require.NoError(t, err)
}

func bob() *models.User {
	return &models.User{ID: 9, Username: "bob", Email: "bob@example.com", IsActive: true, Reputacion: 4.5}
}

func TestLoad_Empty(t *testing.T) {
	s := NewSQLiteStore(setupDB(t), nil)

	token, user, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestSave_ThenLoad_PlainText(t *testing.T) {
	db := setupDB(t)
	s := NewSQLiteStore(db, nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "tok1", bob()))

	assert.Equal(t, []byte("tok1"), rawValue(t, db, common.AuthTokenKey))
	assert.JSONEq(t,
		`{"id":9,"username":"bob","email":"bob@example.com","first_name":"","last_name":"","is_active":true,"is_staff":false,"is_superuser":false,"reputacion":4.5}`,
		string(rawValue(t, db, common.UserDataKey)))

	token, user, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok1", token)
	assert.Equal(t, bob(), user)

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok1", tok)
}

func TestSave_Sealed(t *testing.T) {
	db := setupDB(t)
	sealer, err := cryptox.NewSealer(common.GenerateRandByteArray(cryptox.KeySize))
	require.NoError(t, err)
	s := NewSQLiteStore(db, sealer)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "tok1", bob()))

	assert.NotContains(t, string(rawValue(t, db, common.AuthTokenKey)), "tok1")
	assert.NotContains(t, string(rawValue(t, db, common.UserDataKey)), "bob")

	token, user, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok1", token)
	assert.Equal(t, bob(), user)
}

func TestLoad_Inconsistent(t *testing.T) {
	tests := []struct {
		name string
		seed map[string][]byte
	}{
		{name: "token without user", seed: map[string][]byte{common.AuthTokenKey: []byte("tok")}},
		{name: "user without token", seed: map[string][]byte{common.UserDataKey: []byte(`{"id":1}`)}},
		{name: "user not json", seed: map[string][]byte{common.AuthTokenKey: []byte("tok"), common.UserDataKey: []byte("{{")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupDB(t)
			for k, v := range tt.seed {
				insertRaw(t, db, k, v)
			}

			_, _, err := NewSQLiteStore(db, nil).Load(context.Background())
			require.ErrorIs(t, err, common.ErrInconsistentSession)
		})
	}
}

func TestLoad_SealedWithOtherKey_IsInconsistent(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	first, err := cryptox.NewSealer(common.GenerateRandByteArray(cryptox.KeySize))
	require.NoError(t, err)
	require.NoError(t, NewSQLiteStore(db, first).Save(ctx, "tok1", bob()))

	second, err := cryptox.NewSealer(common.GenerateRandByteArray(cryptox.KeySize))
	require.NoError(t, err)
	_, _, err = NewSQLiteStore(db, second).Load(ctx)
	require.ErrorIs(t, err, common.ErrInconsistentSession)
}

func TestSaveUser_OverwritesOnlyUser(t *testing.T) {
	db := setupDB(t)
	s := NewSQLiteStore(db, nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "tok1", bob()))

	updated := bob()
	updated.Reputacion = 7
	require.NoError(t, s.SaveUser(ctx, updated))

	token, user, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok1", token)
	assert.Equal(t, 7.0, user.Reputacion)
}

func TestSaveUser_WithoutToken_Refused(t *testing.T) {
	db := setupDB(t)
	s := NewSQLiteStore(db, nil)

	err := s.SaveUser(context.Background(), bob())
	require.ErrorIs(t, err, common.ErrInconsistentSession)
	assert.Nil(t, rawValue(t, db, common.UserDataKey), "no orphan user record")
}

func TestClear_RemovesBothAndIsIdempotent(t *testing.T) {
	db := setupDB(t)
	s := NewSQLiteStore(db, nil)
	ctx := context.Background()

	insertRaw(t, db, "unrelated", []byte("keep me"))
	require.NoError(t, s.Save(ctx, "tok1", bob()))

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))

	assert.Nil(t, rawValue(t, db, common.AuthTokenKey))
	assert.Nil(t, rawValue(t, db, common.UserDataKey))
	assert.Equal(t, []byte("keep me"), rawValue(t, db, "unrelated"))

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestSave_FailureLeavesNothingBehind(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	// userData writes fail, token write succeeds first inside the tx
	_, err := db.Exec(`
CREATE TRIGGER reject_user BEFORE INSERT ON metadata
WHEN NEW.key = 'userData'
BEGIN SELECT RAISE(ABORT, 'disk full'); END;`)
	require.NoError(t, err)

	err = NewSQLiteStore(db, nil).Save(ctx, "tok1", bob())
	require.Error(t, err)
	assert.Nil(t, rawValue(t, db, common.AuthTokenKey), "token must be rolled back with the user")
}

// Package session persists the authenticated session pair (token + cached
// user profile) on top of the metadata key-value store.
//
// The two keys are written and removed in one transaction, so after any
// completed call the store holds either both of them or neither.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/sanes/internal/client/models"
	"github.com/dmitrijs2005/sanes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/sanes/internal/common"
	"github.com/dmitrijs2005/sanes/internal/dbx"
)

// Store is the persisted side of a session.
type Store interface {
	// Load returns the stored pair, or ("", nil, nil) when nothing is stored.
	// A half-present or unreadable pair yields common.ErrInconsistentSession.
	Load(ctx context.Context) (string, *models.User, error)
	// Token returns the stored token or "" when there is none.
	Token(ctx context.Context) (string, error)
	// Save writes token and user together.
	Save(ctx context.Context, token string, user *models.User) error
	// SaveUser overwrites the cached user of an existing session.
	SaveUser(ctx context.Context, user *models.User) error
	// Clear removes both keys. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Sealer protects values at rest. cryptox.Sealer satisfies it.
type Sealer interface {
	Seal(plaintext, additional []byte) []byte
	Open(sealed, additional []byte) ([]byte, error)
}

var _ Store = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db     *sql.DB
	sealer Sealer
}

// NewSQLiteStore returns a store over db. With a nil sealer values are kept
// in plain text.
func NewSQLiteStore(db *sql.DB, sealer Sealer) *SQLiteStore {
	return &SQLiteStore{db: db, sealer: sealer}
}

func (s *SQLiteStore) Load(ctx context.Context) (string, *models.User, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	rawToken, err := repo.Get(ctx, common.AuthTokenKey)
	if err != nil {
		return "", nil, err
	}
	rawUser, err := repo.Get(ctx, common.UserDataKey)
	if err != nil {
		return "", nil, err
	}

	switch {
	case rawToken == nil && rawUser == nil:
		return "", nil, nil
	case rawToken == nil || rawUser == nil:
		return "", nil, fmt.Errorf("only one of %s/%s present: %w", common.AuthTokenKey, common.UserDataKey, common.ErrInconsistentSession)
	}

	token, err := s.open(rawToken, common.AuthTokenKey)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", common.AuthTokenKey, common.ErrInconsistentSession)
	}
	userJSON, err := s.open(rawUser, common.UserDataKey)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", common.UserDataKey, common.ErrInconsistentSession)
	}

	user := &models.User{}
	if err := json.Unmarshal(userJSON, user); err != nil {
		return "", nil, fmt.Errorf("decode %s: %w", common.UserDataKey, common.ErrInconsistentSession)
	}
	if len(token) == 0 {
		return "", nil, fmt.Errorf("empty %s: %w", common.AuthTokenKey, common.ErrInconsistentSession)
	}

	return string(token), user, nil
}

func (s *SQLiteStore) Token(ctx context.Context) (string, error) {
	raw, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.AuthTokenKey)
	if err != nil || raw == nil {
		return "", err
	}
	token, err := s.open(raw, common.AuthTokenKey)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", common.AuthTokenKey, err)
	}
	return string(token), nil
}

func (s *SQLiteStore) Save(ctx context.Context, token string, user *models.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.AuthTokenKey, s.seal([]byte(token), common.AuthTokenKey)); err != nil {
			return err
		}
		return repo.Set(ctx, common.UserDataKey, s.seal(userJSON, common.UserDataKey))
	})
}

func (s *SQLiteStore) SaveUser(ctx context.Context, user *models.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		token, err := repo.Get(ctx, common.AuthTokenKey)
		if err != nil {
			return err
		}
		if token == nil {
			return fmt.Errorf("no %s to attach the user to: %w", common.AuthTokenKey, common.ErrInconsistentSession)
		}
		return repo.Set(ctx, common.UserDataKey, s.seal(userJSON, common.UserDataKey))
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, common.AuthTokenKey, common.UserDataKey)
}

func (s *SQLiteStore) seal(value []byte, key string) []byte {
	if s.sealer == nil {
		return value
	}
	return s.sealer.Seal(value, []byte(key))
}

func (s *SQLiteStore) open(value []byte, key string) ([]byte, error) {
	if s.sealer == nil {
		return value, nil
	}
	return s.sealer.Open(value, []byte(key))
}

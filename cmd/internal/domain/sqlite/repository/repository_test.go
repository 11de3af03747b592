package repository

import (
	"testing"
	"time"

	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/domain/sqlite"
	"notekeeper/cmd/internal/security"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestConn(t *testing.T) *sqlite.Manager {
	t.Helper()

	m := sqlite.NewManager("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, m.Open())
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func nowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}

func newUser(id int64, username, email string) *entity.User {
	now := nowMillis()
	return &entity.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func digest(raw string) string {
	return security.DigestToken(raw)
}

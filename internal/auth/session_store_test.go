package auth

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(id string, issuedAt, expiresAt int64) Session {
	return Session{ID: id, Username: "alice", IssuedAt: issuedAt, ExpiresAt: expiresAt}
}

func sessionJSON(t *testing.T, s Session) string {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return string(data)
}

func TestRedisSessionStore_Register(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisSessionStore(db)
	ctx := context.Background()

	session := testSession("s1", 100, 4_000_000_000)
	mock.ExpectHSet("sessions:alice", "s1", sessionJSON(t, session)).SetVal(1)
	mock.ExpectExpireAt("sessions:alice", time.Unix(session.ExpiresAt, 0)).SetVal(true)

	require.NoError(t, store.Register(ctx, session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSessionStore_Active(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisSessionStore(db)
	store.now = func() time.Time { return time.Unix(1_000, 0) }
	ctx := context.Background()

	live := testSession("live", 900, 2_000)
	dead := testSession("dead", 100, 500)
	mock.ExpectHGetAll("sessions:alice").SetVal(map[string]string{
		"live": sessionJSON(t, live),
		"dead": sessionJSON(t, dead),
	})
	mock.ExpectHDel("sessions:alice", "dead").SetVal(1)

	active, err := store.Active(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []Session{live}, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSessionStore_Revoke(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisSessionStore(db)
	ctx := context.Background()

	session := testSession("s1", 100, 2_000)
	mock.ExpectSet("blacklist:s1", "1", 0).SetVal("OK")
	mock.ExpectExpireAt("blacklist:s1", time.Unix(2_000, 0)).SetVal(true)
	mock.ExpectHDel("sessions:alice", "s1").SetVal(1)

	require.NoError(t, store.Revoke(ctx, session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSessionStore_RevokeAll(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisSessionStore(db)
	store.now = func() time.Time { return time.Unix(1_000, 0) }
	ctx := context.Background()

	session := testSession("s1", 900, 2_000)
	mock.ExpectHGetAll("sessions:alice").SetVal(map[string]string{"s1": sessionJSON(t, session)})
	mock.ExpectSet("blacklist:s1", "1", 0).SetVal("OK")
	mock.ExpectExpireAt("blacklist:s1", time.Unix(2_000, 0)).SetVal(true)
	mock.ExpectDel("sessions:alice").SetVal(1)

	n, err := store.RevokeAll(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSessionStore_IsRevoked(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisSessionStore(db)
	ctx := context.Background()

	mock.ExpectExists("blacklist:s1").SetVal(1)
	mock.ExpectExists("blacklist:s2").SetVal(0)

	revoked, err := store.IsRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "s2")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	store.now = func() time.Time { return time.Unix(1_000, 0) }
	ctx := context.Background()

	first := testSession("a", 900, 2_000)
	second := testSession("b", 950, 2_000)
	expired := testSession("c", 100, 500)
	for _, s := range []Session{first, second, expired} {
		require.NoError(t, store.Register(ctx, s))
	}

	active, err := store.Active(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []Session{first, second}, active)

	require.NoError(t, store.Revoke(ctx, first))
	revoked, err := store.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	n, err := store.RevokeAll(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	revoked, err = store.IsRevoked(ctx, "b")
	require.NoError(t, err)
	assert.True(t, revoked)

	active, err = store.Active(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, active)
}

package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/shiv-furniture/shiverp/internal/shared"
	_ "github.com/shiv-furniture/shiverp/testing"
)

func newManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestSessionIdentityRoundTrip(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetIdentity("42", "portal_user", "7")

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "test_session", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	restored, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.Equal(t, "42", restored.User())
	require.Equal(t, "portal_user", restored.Role())
	require.Equal(t, "7", restored.ContactID())
}

func TestSessionDestroyClearsCookieAndStore(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetIdentity("42", "admin", "")

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))
	cookie := res.Result().Cookies()[0]

	// Destroy on the restored session.
	next := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	next.AddCookie(cookie)
	restored, err := sm.Load(ctx, next)
	require.NoError(t, err)
	sm.Destroy(restored)

	res = httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, next, restored))
	cleared := res.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Equal(t, -1, cleared[0].MaxAge)

	// The store no longer knows the session.
	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(cookie)
	anon, err := sm.Load(ctx, again)
	require.NoError(t, err)
	require.Empty(t, anon.User())
}

func TestSessionValuesSurviveCommit(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.Set("csrf", "tok123")

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(res.Result().Cookies()[0])
	restored, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.Equal(t, "tok123", restored.Get("csrf"))
}

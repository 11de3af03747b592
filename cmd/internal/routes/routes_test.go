package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"notekeeper/cmd/internal/domain/sqlite"
	"notekeeper/cmd/internal/domain/sqlite/repository"
	"notekeeper/cmd/internal/http/handler"
	"notekeeper/cmd/internal/http/middleware"
	"notekeeper/cmd/internal/infrastructure/mailer"
	"notekeeper/cmd/internal/security"
	"notekeeper/cmd/internal/service"
	"notekeeper/cmd/internal/utils/uid"
	"notekeeper/cmd/internal/utils/validators"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	uid.Init(1)
	os.Exit(m.Run())
}

var tokenPattern = regexp.MustCompile(`token=([0-9a-f]{64})`)

type inbox struct {
	mu   sync.Mutex
	msgs []*mailer.Message
}

func (i *inbox) Send(_ context.Context, msg *mailer.Message) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.msgs = append(i.msgs, msg)
	return "<" + uuid.NewString() + "@test>", nil
}

// lastToken pulls the token out of the newest email with the subject.
func (i *inbox) lastToken(t *testing.T, subject string) string {
	t.Helper()

	i.mu.Lock()
	defer i.mu.Unlock()
	for j := len(i.msgs) - 1; j >= 0; j-- {
		if i.msgs[j].Subject == subject {
			m := tokenPattern.FindStringSubmatch(i.msgs[j].Text)
			require.Len(t, m, 2)
			return m[1]
		}
	}
	require.FailNow(t, "no email with subject "+subject)
	return ""
}

type testServer struct {
	e     *echo.Echo
	inbox *inbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	conn := sqlite.NewManager("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	t.Cleanup(func() { _ = conn.Close() })

	validate := validators.New()
	userRepo := repository.NewUserRepository(conn)
	noteRepo := repository.NewNoteRepository(conn)

	renderer, err := mailer.NewRenderer("http://localhost:3000", "Notes")
	require.NoError(t, err)
	box := &inbox{}
	sender := mailer.NewSender(box, renderer, mailer.RetryPolicy{MaxAttempts: 1, Delay: time.Millisecond})

	sessions := security.NewSessionIssuer([]byte("test-secret"), 0)
	userService := service.NewUserService(userRepo, service.NewTokenService(userRepo), sender, sessions, validate)
	noteService := service.NewNoteService(noteRepo, validate)

	e := echo.New()
	Register(e, &Handlers{
		Notes:   handler.NewNoteDefault(noteService),
		Users:   handler.NewUserDefault(userService),
		Util:    handler.NewUtilRoute(conn),
		Session: middleware.NewSessionMiddleware(&middleware.SessionMiddlewareConfig{Auth: userService}),
	})
	return &testServer{e: e, inbox: box}
}

func (s *testServer) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == security.SessionCookieName {
			return c
		}
	}
	require.FailNow(t, "session cookie not set")
	return nil
}

func TestAccountFlow(t *testing.T) {
	s := newTestServer(t)

	signUp := `{"username":"alice","email":"alice@example.com","password":"Sup3r$ecret"}`
	rec, body := s.do(t, http.MethodPost, "/api/users/signUp", signUp)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	saved := body["savedUser"].(map[string]any)
	userID := saved["_id"].(string)
	assert.Equal(t, "alice", saved["username"])
	assert.NotContains(t, saved, "password")
	assert.NotContains(t, saved, "passwordHash")

	rec, body = s.do(t, http.MethodPost, "/api/users/signUp", signUp)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User already exists", body["message"])
	assert.Equal(t, false, body["success"])

	login := `{"email":"alice@example.com","password":"Sup3r$ecret"}`
	rec, _ = s.do(t, http.MethodPost, "/api/users/logIn", login)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	verify := s.inbox.lastToken(t, "Verify Your Email Address")
	rec, body = s.do(t, http.MethodPost, "/api/users/verifyEmail", `{"token":"`+verify+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, body = s.do(t, http.MethodPost, "/api/users/verifyEmail", `{"token":"`+verify+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired token", body["message"])

	rec, _ = s.do(t, http.MethodPost, "/api/users/logIn", login)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 86400, cookie.MaxAge)

	rec, body = s.do(t, http.MethodGet, "/api/users/me", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	me := body["data"].(map[string]any)
	assert.Equal(t, userID, me["_id"])
	assert.Equal(t, true, me["isVerified"])

	rec, _ = s.do(t, http.MethodGet, "/api/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/users/logOut", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/api/users/signUp", `{"username":"bob","email":"bob@example.com","password":"Sup3r$ecret"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	userID := body["savedUser"].(map[string]any)["_id"].(string)

	rec, body = s.do(t, http.MethodPost, "/api/users/forgetPassword", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No user found", body["message"])

	rec, _ = s.do(t, http.MethodPost, "/api/users/forgetPassword", `{"email":"bob@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token := s.inbox.lastToken(t, "Reset Your Password")

	rec, body = s.do(t, http.MethodPost, "/api/users/reset-password", `{"token":"`+token+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, body["userId"])

	reset := `{"userId":"` + userID + `","token":"` + token + `","password":"N3w&Better"}`
	rec, _ = s.do(t, http.MethodPost, "/api/users/resetPassword", reset)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/users/resetPassword", reset)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoteRoutes(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/api/notes", `{"userId":"77","title":"Groceries","notes":"milk"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	note := body["data"].(map[string]any)
	noteID := note["_id"].(string)
	assert.Equal(t, "77", note["userId"])
	assert.Equal(t, "milk", note["notes"])

	rec, body = s.do(t, http.MethodGet, "/api/notes?userId=77", "")
	require.Equal(t, http.StatusOK, rec.Code)
	notes := body["data"].([]any)
	require.Len(t, notes, 1)
	assert.Equal(t, noteID, notes[0].(map[string]any)["_id"])

	rec, body = s.do(t, http.MethodPut, "/api/notes", `{"noteId":"`+noteID+`","title":"Shopping","notes":"milk, bread"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := body["data"].(map[string]any)
	assert.Equal(t, "Shopping", updated["title"])
	assert.Equal(t, "77", updated["userId"])

	rec, body = s.do(t, http.MethodDelete, "/api/notes?noteId="+noteID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Deleted successfully", body["data"])

	rec, body = s.do(t, http.MethodDelete, "/api/notes?noteId="+noteID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Error in deleting", body["message"])

	rec, _ = s.do(t, http.MethodPut, "/api/notes", `{"noteId":"`+noteID+`","title":"x","notes":"y"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = s.do(t, http.MethodGet, "/api/notes?userId=77", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["data"])
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/api/notes", `{"userId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Malformed JSON body", body["message"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"github.com/monocle-dev/todolist/internal/auth"
	"github.com/monocle-dev/todolist/internal/handlers"
	"github.com/monocle-dev/todolist/internal/models"
	"github.com/monocle-dev/todolist/internal/router"
	"github.com/monocle-dev/todolist/internal/store/sqlstore"
	"github.com/monocle-dev/todolist/internal/todo"
	"github.com/monocle-dev/todolist/internal/types"
)

var today = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

type fakeGoogle struct {
	profile models.GoogleProfile
	err     error
}

func (f *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (f *fakeGoogle) Exchange(_ context.Context, code string) (models.GoogleProfile, error) {
	if f.err != nil {
		return models.GoogleProfile{}, f.err
	}
	if code != "good-code" {
		return models.GoogleProfile{}, errors.New("bad code")
	}
	return f.profile, nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type app struct {
	t      *testing.T
	engine *gin.Engine
	store  *sqlstore.Store
}

type option func(*handlers.Handler)

func newApp(t *testing.T, opts ...option) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := sqlstore.Open(sqlstore.Config{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "todolist.db"),
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	tokens, err := auth.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)

	l := log.New(io.Discard)
	h := &handlers.Handler{
		Todos:  todo.NewService(s),
		Auth:   auth.NewService(s),
		Tokens: tokens,
		Store:  s,
		Logger: l,
		Now:    func() time.Time { return today },
	}

	for _, opt := range opts {
		opt(h)
	}

	engine, err := router.NewRouter(h, router.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         l,
	})
	require.NoError(t, err)

	return &app{t: t, engine: engine, store: s}
}

func (a *app) get(path, session string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if session != "" {
		req.AddCookie(&http.Cookie{Name: types.SessionCookie, Value: session})
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *app) post(path, session string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: types.SessionCookie, Value: session})
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func sessionFrom(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == types.SessionCookie && cookie.Value != "" {
			return cookie.Value
		}
	}

	t.Fatalf("no session cookie in response")
	return ""
}

func (a *app) register(username string) string {
	a.t.Helper()

	w := a.post("/register", "", url.Values{"username": {username}, "password": {"password"}})
	require.Equal(a.t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(a.t, "/main", w.Header().Get("Location"))

	return sessionFrom(a.t, w)
}

func (a *app) userID(username string) string {
	a.t.Helper()

	user, err := a.store.FindUserByUsername(context.Background(), username)
	require.NoError(a.t, err)
	return user.ID
}

func (a *app) list(username, name string) *models.List {
	a.t.Helper()

	list, err := a.store.FindList(context.Background(), a.userID(username), name)
	require.NoError(a.t, err)
	return list
}

func TestHomePage(t *testing.T) {
	a := newApp(t)

	w := a.get("/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/register"`)
	assert.NotContains(t, w.Body.String(), "/auth/google")
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	a := newApp(t)

	for _, path := range []string{"/main", "/Work", "/createNewList"} {
		w := a.get(path, "")
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}

	w := a.post("/addTask", "", url.Values{"task": {"x"}, "listName": {"Main"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRegisterProvisionsMainList(t *testing.T) {
	a := newApp(t)
	session := a.register("alice")

	main := a.list("alice", "Main")
	assert.Empty(t, main.Tasks)

	w := a.get("/main", session)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<h1>Main</h1>")
	assert.Contains(t, body, "Tues, Mar 5, 2024")
	assert.Contains(t, body, "Nothing here yet.")
	assert.NotContains(t, body, "Delete this list")
}

func TestRegisterValidation(t *testing.T) {
	a := newApp(t)
	a.register("alice")

	w := a.post("/register", "", url.Values{"username": {"alice"}, "password": {"password"}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already taken")

	w = a.post("/register", "", url.Values{"username": {"bob"}, "password": {"123"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	a := newApp(t)
	a.register("alice")

	w := a.post("/login", "", url.Values{"username": {"alice"}, "password": {"wrong-password"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password.")

	w = a.post("/login", "", url.Values{"username": {"alice"}, "password": {"password"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/main", w.Header().Get("Location"))
	session := sessionFrom(t, w)

	w = a.get("/api/me", session)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		User types.UserResponse `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.User.Name)
}

func TestLogoutClearsSession(t *testing.T) {
	a := newApp(t)
	session := a.register("alice")

	w := a.post("/logout", session, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), types.SessionCookie+"=;")
}

func TestTaskLifecycle(t *testing.T) {
	a := newApp(t)
	session := a.register("alice")

	w := a.post("/addTask", session, url.Values{"task": {"Buy milk"}, "listName": {"Main"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/main", w.Header().Get("Location"))

	w = a.post("/addTask", session, url.Values{"task": {"   "}, "listName": {"Main"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/main", w.Header().Get("Location"))

	main := a.list("alice", "Main")
	require.Len(t, main.Tasks, 1)
	taskID := main.Tasks[0].ID

	assert.Contains(t, a.get("/main", session).Body.String(), `value="Buy milk"`)

	w = a.post("/editTask", session, url.Values{"taskId": {taskID}, "editedTask": {"Buy oat milk"}, "listName": {"Main"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/main", w.Header().Get("Location"))
	assert.Equal(t, "Buy oat milk", a.list("alice", "Main").Tasks[0].Name)

	w = a.post("/deleteTask", session, url.Values{"task": {taskID}, "listName": {"Main"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, a.list("alice", "Main").Tasks)

	// Deleting again is harmless.
	w = a.post("/deleteTask", session, url.Values{"task": {taskID}, "listName": {"Main"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/main", w.Header().Get("Location"))
}

func TestCustomLists(t *testing.T) {
	a := newApp(t)
	session := a.register("alice")

	w := a.get("/groceries", session)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/Groceries", w.Header().Get("Location"))

	w = a.get("/Groceries", session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Groceries</h1>")
	assert.Contains(t, w.Body.String(), "Delete this list")

	w = a.post("/newList", session, url.Values{"newListName": {" GROCERIES "}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/Groceries", w.Header().Get("Location"))

	w = a.post("/createNewList", session, url.Values{"newListName": {"work"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/Work", w.Header().Get("Location"))

	w = a.post("/newList", session, url.Values{"newListName": {"  "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.post("/newList", session, url.Values{"newListName": {"v1.2"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "dots or slashes")

	lists, err := a.store.ListsByUser(context.Background(), a.userID("alice"))
	require.NoError(t, err)
	require.Len(t, lists, 3)
	assert.Equal(t, []string{"Main", "Groceries", "Work"}, []string{lists[0].Name, lists[1].Name, lists[2].Name})

	w = a.post("/addTask", session, url.Values{"task": {"Apples"}, "listName": {"Groceries"}})
	assert.Equal(t, "/Groceries", w.Header().Get("Location"))
	assert.Len(t, a.list("alice", "Groceries").Tasks, 1)

	body := a.get("/main", session).Body.String()
	assert.Contains(t, body, `href="/Groceries"`)
	assert.Contains(t, body, `href="/Work"`)
}

func TestShowListRedirects(t *testing.T) {
	a := newApp(t)
	session := a.register("alice")

	w := a.get("/Main", session)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/main", w.Header().Get("Location"))

	w = a.get("/favicon.ico", session)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteList(t *testing.T) {
	a := newApp(t)
	session := a.register("alice")

	main := a.list("alice", "Main")
	w := a.post("/deleteNewList", session, url.Values{"listId": {main.ID}, "listName": {"Main"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/main", w.Header().Get("Location"))
	a.list("alice", "Main")

	a.get("/Work", session)
	work := a.list("alice", "Work")
	a.post("/addTask", session, url.Values{"task": {"Ship it"}, "listName": {"Work"}})

	w = a.post("/deleteNewList", session, url.Values{"listId": {work.ID}, "listName": {"Work"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/main", w.Header().Get("Location"))

	_, err := a.store.FindList(context.Background(), a.userID("alice"), "Work")
	assert.Error(t, err)

	// A second delete finds nothing and still lands on Main.
	w = a.post("/deleteNewList", session, url.Values{"listId": {work.ID}, "listName": {"Work"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/main", w.Header().Get("Location"))
}

func TestUsersAreIsolated(t *testing.T) {
	a := newApp(t)
	alice := a.register("alice")
	bob := a.register("bob")

	a.post("/addTask", alice, url.Values{"task": {"Alice's task"}, "listName": {"Main"}})
	task := a.list("alice", "Main").Tasks[0]

	w := a.post("/editTask", bob, url.Values{"taskId": {task.ID}, "editedTask": {"hijacked"}, "listName": {"Main"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/main", w.Header().Get("Location"))

	a.post("/deleteTask", bob, url.Values{"task": {task.ID}, "listName": {"Main"}})

	aliceMain := a.list("alice", "Main")
	require.Len(t, aliceMain.Tasks, 1)
	assert.Equal(t, "Alice's task", aliceMain.Tasks[0].Name)

	assert.NotContains(t, a.get("/main", bob).Body.String(), "Alice&#39;s task")

	w = a.post("/deleteNewList", bob, url.Values{"listId": {aliceMain.ID}, "listName": {"Main"}})
	assert.Equal(t, "/main", w.Header().Get("Location"))
	a.list("alice", "Main")
}

func TestGoogleSignIn(t *testing.T) {
	google := &fakeGoogle{profile: models.GoogleProfile{ID: "g-1", Email: "alice@example.com"}}
	a := newApp(t, func(h *handlers.Handler) { h.Google = google })

	assert.Contains(t, a.get("/", "").Body.String(), "/auth/google")

	w := a.get("/auth/google", "")
	require.Equal(t, http.StatusFound, w.Code)

	var state string
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == types.StateCookie {
			state = cookie.Value
		}
	}
	require.NotEmpty(t, state)
	assert.Contains(t, w.Header().Get("Location"), url.QueryEscape(state))

	callback := func(query, cookieState string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/google/todolist?"+query, nil)
		if cookieState != "" {
			req.AddCookie(&http.Cookie{Name: types.StateCookie, Value: cookieState})
		}
		w := httptest.NewRecorder()
		a.engine.ServeHTTP(w, req)
		return w
	}

	w = callback("state=forged&code=good-code", state)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = callback("state="+state+"&code=bad-code", state)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = callback("state="+state+"&code=good-code", "")
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = callback("state="+state+"&code=good-code", state)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/main", w.Header().Get("Location"))
	session := sessionFrom(t, w)

	w = a.get("/main", session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")

	// Signing in again reuses the same account.
	w = callback("state="+state+"&code=good-code", state)
	assert.Equal(t, "/main", w.Header().Get("Location"))

	user, err := a.store.UpsertGoogleUser(context.Background(), google.profile)
	require.NoError(t, err)
	lists, err := a.store.ListsByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, lists, 1)
}

func TestGoogleDisabled(t *testing.T) {
	a := newApp(t)

	w := a.get("/auth/google", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestHealthCheck(t *testing.T) {
	a := newApp(t)

	w := a.get("/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	a = newApp(t, func(h *handlers.Handler) { h.Store = failingPinger{} })
	w = a.get("/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type unavailableStore struct{ todo.Store }

func (unavailableStore) FindList(context.Context, string, string) (*models.List, error) {
	return nil, errors.New("connection refused")
}

func (unavailableStore) InsertList(context.Context, *models.List) error {
	return errors.New("connection refused")
}

func TestStoreFailureRendersErrorPage(t *testing.T) {
	a := newApp(t, func(h *handlers.Handler) { h.Todos = todo.NewService(unavailableStore{}) })
	session := a.register("alice")

	w := a.get("/main", session)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong")
}

package httpapi_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/server/auth"
	"github.com/taskdeck/taskdeck/internal/server/config"
	"github.com/taskdeck/taskdeck/internal/server/httpapi"
	"github.com/taskdeck/taskdeck/internal/server/projects"
	"github.com/taskdeck/taskdeck/internal/server/shared/db"
	"github.com/taskdeck/taskdeck/internal/server/tasks"
	"github.com/taskdeck/taskdeck/internal/server/users"
)

const testSecret = "test-secret"

type testEnv struct {
	t       *testing.T
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		EndpointAddr:          ":0",
		SecretKey:             testSecret,
		TokenValidityDuration: time.Hour,
		FrontendOrigin:        "http://localhost:5173",
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	m := db.NewInMemoryRepositoryManager()

	srv := httpapi.NewServer(cfg, logger,
		users.NewService(m.Users(), cfg),
		projects.NewService(m.Projects()),
		tasks.NewService(m.Tasks(), m.Projects()),
	)

	return &testEnv{t: t, handler: srv.Handler()}
}

// do performs a request with an optional bearer token and decodes the JSON
// response body, if any.
func (e *testEnv) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = strings.NewReader(string(b))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

// signup registers a user and returns its bearer token.
func (e *testEnv) signup(name, email string) string {
	e.t.Helper()

	w, body := e.do(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(e.t, http.StatusCreated, w.Code)

	token, _ := body["token"].(string)
	require.NotEmpty(e.t, token)
	return token
}

func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	resp := w.Result()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)

	w, body := e.do(http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestSignup_SetsCookieAndReturnsUser(t *testing.T) {
	e := newTestEnv(t)

	w, body := e.do(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, "User created successfully", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	cookie := findCookie(t, w, "token")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, body["token"], cookie.Value)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)
}

func TestSignup_ValidationDetails(t *testing.T) {
	e := newTestEnv(t)

	w, body := e.do(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     "A",
		"email":    "not-an-email",
		"password": "123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", body["error"])

	details := body["details"].([]any)
	fields := map[string]bool{}
	for _, d := range details {
		fields[d.(map[string]any)["field"].(string)] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestSignup_DuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	e.signup("Alice", "alice@example.com")

	w, body := e.do(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     "Impostor",
		"email":    "alice@example.com",
		"password": "password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email already exists", body["error"])
}

func TestLogin_And_Me(t *testing.T) {
	e := newTestEnv(t)
	e.signup("Alice", "alice@example.com")

	w, body := e.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful", body["message"])
	token := body["token"].(string)

	w, body = e.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Alice", user["name"])
	assert.Contains(t, user, "createdAt")
}

func TestLogin_BadCredentials(t *testing.T) {
	e := newTestEnv(t)
	e.signup("Alice", "alice@example.com")

	for _, creds := range []map[string]any{
		{"email": "alice@example.com", "password": "wrongpass"},
		{"email": "nobody@example.com", "password": "secret123"},
	} {
		w, body := e.do(http.MethodPost, "/api/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid email or password", body["error"])
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("Alice", "alice@example.com")

	w, body := e.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logout successful", body["message"])

	cookie := findCookie(t, w, "token")
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestAuthenticate_FailureModes(t *testing.T) {
	e := newTestEnv(t)

	w, body := e.do(http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", body["error"])

	w, body = e.do(http.MethodGet, "/api/tasks", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", body["error"])

	expired, err := auth.GenerateToken("u1", "a@example.com", []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	w, body = e.do(http.MethodGet, "/api/tasks", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token expired", body["error"])

	ghost, err := auth.GenerateToken("ghost", "g@example.com", []byte(testSecret), time.Minute)
	require.NoError(t, err)
	w, body = e.do(http.MethodGet, "/api/tasks", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User not found", body["error"])
}

func TestAuthenticate_AcceptsCookie(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("Alice", "alice@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTaskLifecycle(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("Alice", "alice@example.com")

	// create
	w, body := e.do(http.MethodPost, "/api/tasks", token, map[string]any{
		"title":    "Write report",
		"priority": 2,
		"tags":     []string{"work"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	task := body["task"].(map[string]any)
	taskID := task["id"].(string)
	assert.Equal(t, float64(2), task["priority"])
	assert.False(t, task["completed"].(bool))
	assert.Nil(t, task["completedAt"])

	// partial update
	w, body = e.do(http.MethodPut, "/api/tasks/"+taskID, token, map[string]any{
		"title": "Write the report",
	})
	require.Equal(t, http.StatusOK, w.Code)
	task = body["task"].(map[string]any)
	assert.Equal(t, "Write the report", task["title"])
	assert.Equal(t, float64(2), task["priority"])

	// toggle twice returns to the initial state
	w, body = e.do(http.MethodPatch, "/api/tasks/"+taskID+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	task = body["task"].(map[string]any)
	assert.True(t, task["completed"].(bool))
	assert.NotNil(t, task["completedAt"])

	w, body = e.do(http.MethodPatch, "/api/tasks/"+taskID+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	task = body["task"].(map[string]any)
	assert.False(t, task["completed"].(bool))
	assert.Nil(t, task["completedAt"])

	// delete, then the task is gone
	w, _ = e.do(http.MethodDelete, "/api/tasks/"+taskID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, body = e.do(http.MethodGet, "/api/tasks/"+taskID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", body["error"])
}

func TestTask_UnknownProjectRejected(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("Alice", "alice@example.com")

	w, body := e.do(http.MethodPost, "/api/tasks", token, map[string]any{
		"title":     "Orphan",
		"projectId": "no-such-project",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", body["error"])

	details := body["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "projectId", details[0].(map[string]any)["field"])
}

func TestTask_ClearProjectWithNull(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("Alice", "alice@example.com")

	w, body := e.do(http.MethodPost, "/api/projects", token, map[string]any{"name": "Work"})
	require.Equal(t, http.StatusCreated, w.Code)
	projectID := body["project"].(map[string]any)["id"].(string)

	w, body = e.do(http.MethodPost, "/api/tasks", token, map[string]any{
		"title":     "Attached",
		"projectId": projectID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	task := body["task"].(map[string]any)
	require.NotNil(t, task["project"])

	w, body = e.do(http.MethodPut, "/api/tasks/"+task["id"].(string), token, map[string]any{
		"projectId": nil,
	})
	require.Equal(t, http.StatusOK, w.Code)
	task = body["task"].(map[string]any)
	assert.Nil(t, task["projectId"])
}

func TestTasks_ListFiltersAndPagination(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("Alice", "alice@example.com")

	for i := 0; i < 3; i++ {
		w, _ := e.do(http.MethodPost, "/api/tasks", token, map[string]any{
			"title":    fmt.Sprintf("urgent %d", i),
			"priority": 2,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w, _ := e.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": "background"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := e.do(http.MethodGet, "/api/tasks?priority=2&completed=false&page=2&limit=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := body["tasks"].([]any)
	assert.Len(t, list, 1)

	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(1), pagination["limit"])
	assert.Equal(t, float64(3), pagination["total"])
	assert.Equal(t, float64(3), pagination["pages"])
}

func TestTasks_BadQueryParams(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("Alice", "alice@example.com")

	for _, tc := range []struct {
		query string
		field string
	}{
		{query: "priority=9", field: "priority"},
		{query: "completed=maybe", field: "completed"},
		{query: "page=0", field: "page"},
		{query: "limit=-1", field: "limit"},
	} {
		w, body := e.do(http.MethodGet, "/api/tasks?"+tc.query, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.query)

		details := body["details"].([]any)
		require.Len(t, details, 1, tc.query)
		assert.Equal(t, tc.field, details[0].(map[string]any)["field"])
	}
}

func TestOwnership_ForeignRecordsAreNotFound(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("Alice", "alice@example.com")
	bob := e.signup("Bob", "bob@example.com")

	w, body := e.do(http.MethodPost, "/api/tasks", alice, map[string]any{"title": "private"})
	require.Equal(t, http.StatusCreated, w.Code)
	taskID := body["task"].(map[string]any)["id"].(string)

	w, body = e.do(http.MethodGet, "/api/tasks/"+taskID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", body["error"])

	w, _ = e.do(http.MethodDelete, "/api/tasks/"+taskID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// bob's listing never includes alice's task
	w, body = e.do(http.MethodGet, "/api/tasks", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["tasks"])
}

func TestProjectLifecycle_DeleteDetachesTasks(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("Alice", "alice@example.com")

	w, body := e.do(http.MethodPost, "/api/projects", token, map[string]any{
		"name":  "Work",
		"color": "#ff0000",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	project := body["project"].(map[string]any)
	projectID := project["id"].(string)
	assert.Equal(t, "#ff0000", project["color"])

	w, body = e.do(http.MethodPost, "/api/tasks", token, map[string]any{
		"title":     "Attached",
		"projectId": projectID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	taskID := body["task"].(map[string]any)["id"].(string)

	// taskCount reflects the attachment
	w, body = e.do(http.MethodGet, "/api/projects/"+projectID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["project"].(map[string]any)["taskCount"])

	// delete without deleteTasks detaches
	w, _ = e.do(http.MethodDelete, "/api/projects/"+projectID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, body = e.do(http.MethodGet, "/api/tasks/"+taskID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["task"].(map[string]any)["projectId"])
}

func TestProjectDelete_CascadeRemovesTasks(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("Alice", "alice@example.com")

	w, body := e.do(http.MethodPost, "/api/projects", token, map[string]any{"name": "Doomed"})
	require.Equal(t, http.StatusCreated, w.Code)
	projectID := body["project"].(map[string]any)["id"].(string)

	w, body = e.do(http.MethodPost, "/api/tasks", token, map[string]any{
		"title":     "Goes with it",
		"projectId": projectID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	taskID := body["task"].(map[string]any)["id"].(string)

	w, _ = e.do(http.MethodDelete, "/api/projects/"+projectID+"?deleteTasks=true", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = e.do(http.MethodGet, "/api/tasks/"+taskID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProject_InvalidColorRejected(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("Alice", "alice@example.com")

	w, body := e.do(http.MethodPost, "/api/projects", token, map[string]any{
		"name":  "Bad color",
		"color": "red",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", body["error"])
}

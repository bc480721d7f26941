package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/sbilibin2017/gw-user-management/internal/config"
	"github.com/sbilibin2017/gw-user-management/internal/handlers"
	"github.com/sbilibin2017/gw-user-management/internal/jwt"
	"github.com/sbilibin2017/gw-user-management/internal/middlewares"
	"github.com/sbilibin2017/gw-user-management/internal/models"
	"github.com/sbilibin2017/gw-user-management/internal/repositories"
	"github.com/sbilibin2017/gw-user-management/internal/services"
)

// resetFlags resets the global flag.CommandLine to avoid "flag redefined" panic
func resetFlags() {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
}

func TestParseFlags_Default(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd"}
	assert.Equal(t, "config.env", parseFlags())
}

func TestParseFlags_Custom(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "-c", "myconfig.env"}
	assert.Equal(t, "myconfig.env", parseFlags())
}

func TestPrintBuildInfo_Output(t *testing.T) {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	buildVersion = "v1.0.0"
	buildCommit = "abcd1234"
	buildDate = "2025-09-26"

	printBuildInfo()

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	output := buf.String()
	assert.Contains(t, output, "Build version: v1.0.0")
	assert.Contains(t, output, "Build commit: abcd1234")
	assert.Contains(t, output, "Build date: 2025-09-26")
}

// memStore is an in-memory user table satisfying every repository
// interface the services and the auth middleware consume.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	clock  time.Time
	users  map[int64]*models.UserDB
}

func newMemStore() *memStore {
	return &memStore{
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		users: map[int64]*models.UserDB{},
	}
}

func (s *memStore) GetByID(_ context.Context, id int64) (*models.UserDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetByEmail(_ context.Context, email string) (*models.UserDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) List(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, models.User{ID: u.ID, Name: u.Name, Email: u.Email, LastLogin: u.LastLogin, Status: u.Status})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastLogin, out[j].LastLogin
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return out[i].ID < out[j].ID
		}
		return a.After(*b)
	})
	return out, nil
}

func (s *memStore) Save(_ context.Context, name, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return repositories.ErrDuplicateKey
		}
	}
	s.nextID++
	s.users[s.nextID] = &models.UserDB{
		ID:           s.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Status:       models.UserStatusActive,
		CreatedAt:    s.clock,
	}
	return nil
}

func (s *memStore) UpdateLastLogin(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = s.clock.Add(time.Second)
	if u, ok := s.users[id]; ok {
		ts := s.clock
		u.LastLogin = &ts
	}
	return nil
}

func (s *memStore) UpdateStatus(_ context.Context, ids []int64, status models.UserStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			u.Status = status
			n++
		}
	}
	return n, nil
}

func (s *memStore) Delete(_ context.Context, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := s.users[id]; ok {
			delete(s.users, id)
			n++
		}
	}
	return n, nil
}

type testApp struct {
	server *httptest.Server
	store  *memStore
	now    time.Time
	mu     sync.Mutex
}

func (a *testApp) clock() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.now
}

func (a *testApp) advance(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now = a.now.Add(d)
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	app := &testApp{store: newMemStore(), now: time.Now()}
	tokens := jwt.New(
		jwt.WithSecretKey("test-secret"),
		jwt.WithExpiration(time.Hour),
		jwt.WithClock(app.clock),
	)
	authService := services.NewAuthService(app.store, app.store, tokens).WithHashCost(bcrypt.MinCost)
	userService := services.NewUserService(app.store, app.store)

	app.server = httptest.NewServer(newRouter(routes{
		home:        handlers.NewHomeHandler(),
		register:    handlers.NewRegisterHandler(authService),
		login:       handlers.NewLoginHandler(authService),
		users:       handlers.NewListUsersHandler(userService),
		block:       handlers.NewBlockHandler(userService, middlewares.GetUserFromContext),
		unblock:     handlers.NewUnblockHandler(userService, middlewares.GetUserFromContext),
		delete:      handlers.NewDeleteHandler(userService, middlewares.GetUserFromContext),
		auth:        middlewares.AuthMiddleware(tokens, app.store),
		tx:          func(next http.Handler) http.Handler { return next },
		corsOrigins: []string{"*"},
		swaggerURL:  "/swagger/doc.json",
	}))
	t.Cleanup(app.server.Close)

	return app
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.server.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (a *testApp) register(t *testing.T, name, email, password string) {
	t.Helper()
	code, body := a.do(t, http.MethodPost, "/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, code, string(body))
}

func (a *testApp) login(t *testing.T, email, password string) handlers.LoginResponse {
	t.Helper()
	code, body := a.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, code, string(body))

	var resp handlers.LoginResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func (a *testApp) listIDs(t *testing.T, token string) []int64 {
	t.Helper()
	code, body := a.do(t, http.MethodGet, "/users", token, nil)
	require.Equal(t, http.StatusOK, code, string(body))

	var users []models.User
	require.NoError(t, json.Unmarshal(body, &users))
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func errorOf(t *testing.T, body []byte) string {
	t.Helper()
	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error
}

func TestRouter_HomeAndHeaders(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.server.Client().Get(app.server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Welcome to the User Management API", string(body))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get(middlewares.RequestIDHeader))
}

func TestRouter_SwaggerDoc(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, http.MethodGet, "/swagger/doc.json", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "/register")
	assert.Contains(t, string(body), "BearerAuth")
}

func TestRouter_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)

	app.register(t, "John", "john@example.com", "secret")

	code, body := app.do(t, http.MethodPost, "/register", "", map[string]string{
		"name": "Other", "email": "john@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email already exists", errorOf(t, body))

	code, body = app.do(t, http.MethodPost, "/register", "", map[string]string{"name": "NoMail"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "All fields required", errorOf(t, body))

	resp := app.login(t, "john@example.com", "secret")
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "John", resp.Username)
	assert.Equal(t, int64(1), resp.User.ID)

	// Unknown email and wrong password are indistinguishable.
	code, wrongPass := app.do(t, http.MethodPost, "/login", "", map[string]string{"email": "john@example.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, unknown := app.do(t, http.MethodPost, "/login", "", map[string]string{"email": "ghost@example.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, string(wrongPass), string(unknown))

	u, _ := app.store.GetByID(context.Background(), 1)
	require.NotNil(t, u.LastLogin)
}

func TestRouter_AuthRequired(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/block", "/unblock", "/delete"} {
		code, _ := app.do(t, http.MethodPost, path, "", map[string][]int64{"userIds": {1}})
		assert.Equal(t, http.StatusUnauthorized, code, path)
	}

	code, body := app.do(t, http.MethodGet, "/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", errorOf(t, body))

	code, body = app.do(t, http.MethodGet, "/users", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token", errorOf(t, body))
}

func TestRouter_TokenExpiresAfterOneHour(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "John", "john@example.com", "secret")
	token := app.login(t, "john@example.com", "secret").Token

	app.advance(59 * time.Minute)
	code, _ := app.do(t, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusOK, code)

	app.advance(2 * time.Minute)
	code, _ = app.do(t, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_ListOrder(t *testing.T) {
	app := newTestApp(t)
	for i := 1; i <= 4; i++ {
		app.register(t, "U"+strconv.Itoa(i), fmt.Sprintf("u%d@example.com", i), "pw")
	}

	app.login(t, "u2@example.com", "pw")
	app.login(t, "u1@example.com", "pw")
	token := app.login(t, "u3@example.com", "pw").Token

	// Most recent login first, never-logged-in last.
	assert.Equal(t, []int64{3, 1, 2, 4}, app.listIDs(t, token))
}

func TestRouter_BlockRevokesLiveTokens(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Admin", "admin@example.com", "pw")
	app.register(t, "Bob", "bob@example.com", "pw")
	admin := app.login(t, "admin@example.com", "pw").Token
	bob := app.login(t, "bob@example.com", "pw").Token

	code, body := app.do(t, http.MethodPost, "/block", admin, map[string][]int64{"userIds": {2}})
	require.Equal(t, http.StatusOK, code, string(body))

	code, body = app.do(t, http.MethodGet, "/users", bob, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "User blocked or deleted", errorOf(t, body))

	// Blocked wins over a wrong password.
	code, body = app.do(t, http.MethodPost, "/login", "", map[string]string{"email": "bob@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "User is blocked", errorOf(t, body))

	code, _ = app.do(t, http.MethodPost, "/unblock", admin, map[string][]int64{"userIds": {2}})
	require.Equal(t, http.StatusOK, code)

	// The old token is honoured again once the account is active.
	code, _ = app.do(t, http.MethodGet, "/users", bob, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_SelfInclusion(t *testing.T) {
	t.Run("block self", func(t *testing.T) {
		app := newTestApp(t)
		app.register(t, "Admin", "admin@example.com", "pw")
		app.register(t, "Bob", "bob@example.com", "pw")
		admin := app.login(t, "admin@example.com", "pw").Token

		code, body := app.do(t, http.MethodPost, "/block", admin, map[string][]int64{"userIds": {1, 2}})
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "User blocked or deleted", errorOf(t, body))

		for _, id := range []int64{1, 2} {
			u, _ := app.store.GetByID(context.Background(), id)
			assert.True(t, u.IsBlocked(), "user %d", id)
		}

		code, _ = app.do(t, http.MethodGet, "/users", admin, nil)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("delete self", func(t *testing.T) {
		app := newTestApp(t)
		app.register(t, "Admin", "admin@example.com", "pw")
		admin := app.login(t, "admin@example.com", "pw").Token

		code, _ := app.do(t, http.MethodPost, "/delete", admin, map[string][]int64{"userIds": {1}})
		assert.Equal(t, http.StatusForbidden, code)

		u, _ := app.store.GetByID(context.Background(), 1)
		assert.Nil(t, u)

		code, _ = app.do(t, http.MethodGet, "/users", admin, nil)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("unblock self is allowed", func(t *testing.T) {
		app := newTestApp(t)
		app.register(t, "Admin", "admin@example.com", "pw")
		admin := app.login(t, "admin@example.com", "pw").Token

		code, _ := app.do(t, http.MethodPost, "/unblock", admin, map[string][]int64{"userIds": {1}})
		assert.Equal(t, http.StatusOK, code)
	})
}

func TestRouter_DeleteAndEmptyBatch(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Admin", "admin@example.com", "pw")
	app.register(t, "Bob", "bob@example.com", "pw")
	app.register(t, "Carol", "carol@example.com", "pw")
	admin := app.login(t, "admin@example.com", "pw").Token

	code, _ := app.do(t, http.MethodPost, "/block", admin, map[string][]int64{"userIds": {}})
	assert.Equal(t, http.StatusOK, code)

	code, _ = app.do(t, http.MethodPost, "/delete", admin, map[string][]int64{"userIds": {2, 99}})
	assert.Equal(t, http.StatusOK, code)

	ids := app.listIDs(t, admin)
	assert.False(t, slices.Contains(ids, int64(2)))
	assert.ElementsMatch(t, []int64{1, 3}, ids)

	// A deleted email can register again.
	app.register(t, "Bob", "bob@example.com", "pw")
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

func TestRun_Success(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "user"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: pgReq, Started: true})
	require.NoError(t, err)
	defer pgContainer.Terminate(ctx)

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{
		AppHost:        "127.0.0.1",
		AppPort:        freePort(t),
		LogLevel:       "debug",
		Migrate:        true,
		CORSOrigins:    []string{"*"},
		DBDriver:       config.DriverPostgres,
		DBHost:         pgHost,
		DBPort:         pgPort.Int(),
		DBUser:         "user",
		DBPassword:     "password",
		DBName:         "testdb",
		DBMaxOpenConns: 5,
		DBMaxIdleConns: 2,
		JWTSecret:      "testsecret",
		JWTExp:         time.Hour,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- run(runCtx, cfg) }()

	base := "http://" + cfg.Addr()
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 20*time.Second, 200*time.Millisecond)

	post := func(path, token string, body any) *http.Response {
		b, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPost, base+path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := post("/register", "", map[string]string{"name": "John", "email": "john@example.com", "password": "secret"})
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = post("/login", "", map[string]string{"email": "john@example.com", "password": "secret"})
	var login handlers.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, login.Token)

	resp = post("/block", login.Token, map[string][]int64{"userIds": {login.User.ID}})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}
}

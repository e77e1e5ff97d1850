package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/asso-backend/internal/api"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/cache"
	"github.com/baharkarakas/asso-backend/internal/models"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
	"github.com/baharkarakas/asso-backend/internal/repository/memory"
	"github.com/baharkarakas/asso-backend/internal/services"
	"github.com/baharkarakas/asso-backend/internal/uploads"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type server struct {
	t      *testing.T
	h      http.Handler
	repos  repo.Repositories
	tokens *auth.TokenManager
}

func newServer(t *testing.T, env string) *server {
	t.Helper()
	repos := memory.NewRepositories()
	files, err := uploads.NewStore(t.TempDir(), 1<<20)
	require.NoError(t, err)
	sums := cache.NewSummaries(repos.Users, time.Minute)
	j := services.NewJanitor(files, nil)
	tm := auth.NewTokenManager("asso-test", "access-secret", "refresh-secret", time.Minute, time.Hour)

	h := api.NewRouter(api.RouterDeps{
		Env:         env,
		Tokens:      tm,
		Files:       files,
		Users:       services.NewUserService(repos.Users, tm, sums, j),
		Posts:       services.NewPostService(repos.Posts, repos.AuditLogs, sums, j),
		Events:      services.NewEventService(repos.Events, repos.AuditLogs, sums, j),
		Cotisations: services.NewCotisationService(repos.Cotisations, repos.AuditLogs, sums),
	})
	return &server{t: t, h: h, repos: repos, tokens: tm}
}

// user stores an account and returns an access token for it.
func (s *server) user(id string, role models.Role) string {
	s.t.Helper()
	require.NoError(s.t, s.repos.Users.Create(context.Background(), models.User{
		ID: id, Name: "User " + id, Nickname: id, Email: id + "@example.org", Role: role,
		CreatedAt: time.Now().UTC(),
	}))
	pair, err := s.tokens.GeneratePair(id, role)
	require.NoError(s.t, err)
	return pair.AccessToken
}

func (s *server) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	return s.send(req, token)
}

func (s *server) send(req *http.Request, token string) (int, envelope) {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func idOf(t *testing.T, env envelope) string {
	t.Helper()
	var v struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &v))
	require.NotEmpty(t, v.ID)
	return v.ID
}

func TestRegisterLoginAndList(t *testing.T) {
	s := newServer(t, "test")

	code, env := s.do(http.MethodPost, "/api/users", "", map[string]string{
		"name": "Ada", "nickname": "ada", "email": "Ada@Example.org", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	assert.True(t, env.Success)
	assert.NotContains(t, string(env.Data), "password")

	code, env = s.do(http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "ada@example.org", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", env.Error)

	code, env = s.do(http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "ada@example.org", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	var session struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.NotEmpty(t, session.AccessToken)

	code, env = s.do(http.MethodGet, "/api/users", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	code, env = s.do(http.MethodPost, "/api/users/refresh", "", map[string]string{"refresh_token": session.RefreshToken})
	assert.Equal(t, http.StatusOK, code, env.Error)
}

func TestAuthRequired(t *testing.T) {
	s := newServer(t, "test")

	code, env := s.do(http.MethodPost, "/api/posts", "", map[string]string{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", env.Code)
	assert.False(t, env.Success)

	code, env = s.do(http.MethodPost, "/api/posts", "expired.or.garbage", map[string]string{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid access token", env.Error)

	code, env = s.do(http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestPublicReadsIgnoreRejectedToken(t *testing.T) {
	s := newServer(t, "test")

	for _, path := range []string{"/api/posts", "/api/events"} {
		code, env := s.do(http.MethodGet, path, "expired.or.garbage", nil)
		assert.Equal(t, http.StatusOK, code, path)
		assert.True(t, env.Success, path)
	}

	code, env := s.do(http.MethodGet, "/api/cotisations/my-cotisations", "expired.or.garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid access token", env.Error)

	code, env = s.do(http.MethodGet, "/api/cotisations/x/history", "expired.or.garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid access token", env.Error)
}

func TestDevTokensOnlyInDev(t *testing.T) {
	prod := newServer(t, "prod")
	prod.user("u1", models.RoleMember)
	code, _ := prod.do(http.MethodGet, "/api/cotisations/my-cotisations", "dev-u1", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	dev := newServer(t, "dev")
	dev.user("u1", models.RoleMember)
	code, env := dev.do(http.MethodGet, "/api/cotisations/my-cotisations", "dev-u1", nil)
	assert.Equal(t, http.StatusOK, code, env.Error)

	code, _ = dev.do(http.MethodGet, "/api/cotisations", "dev-admin-root", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestJoinFullEvent(t *testing.T) {
	s := newServer(t, "test")
	org := s.user("org", models.RoleMember)
	guest := s.user("guest", models.RoleMember)

	code, env := s.do(http.MethodPost, "/api/events", org, map[string]any{
		"title": "Picnic", "description": "Bring food", "date": "2026-07-01", "time": "12:00",
		"location": "Park", "max_participants": 1,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	id := idOf(t, env)

	code, env = s.do(http.MethodPost, "/api/events/"+id+"/join", guest, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "full", env.Code)

	code, env = s.do(http.MethodPatch, "/api/events/"+id, org, map[string]any{"max_participants": nil})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = s.do(http.MethodPost, "/api/events/"+id+"/join", guest, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var ev struct {
		ParticipantCount int `json:"participant_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ev))
	assert.Equal(t, 2, ev.ParticipantCount)

	code, env = s.do(http.MethodPost, "/api/events/"+id+"/join", guest, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "already_joined", env.Code)

	code, env = s.do(http.MethodPost, "/api/events/"+id+"/leave", org, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "organizer_cannot_leave", env.Code)

	code, env = s.do(http.MethodDelete, "/api/events/"+id, guest, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", env.Code)
}

func TestEventValidation(t *testing.T) {
	s := newServer(t, "test")
	org := s.user("org", models.RoleMember)

	code, env := s.do(http.MethodPost, "/api/events", org, map[string]any{"title": "No date"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", env.Code)
	assert.Contains(t, env.Error, "date: required")

	code, env = s.do(http.MethodGet, "/api/events/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", env.Code)
}

func TestCotisationStatusIsAdminOnly(t *testing.T) {
	s := newServer(t, "test")
	member := s.user("m1", models.RoleMember)
	admin := s.user("a1", models.RoleAdmin)

	code, env := s.do(http.MethodPost, "/api/cotisations", member, map[string]any{
		"amount": "30", "start_period": "2026-01-01", "end_period": "2026-12-31", "payment_method": "cash",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	id := idOf(t, env)
	assert.Contains(t, string(env.Data), `"receipt_number":"COT-`)

	code, env = s.do(http.MethodPatch, "/api/cotisations/"+id+"/status", member, map[string]string{"status": "validated"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", env.Code)

	code, env = s.do(http.MethodGet, "/api/cotisations/check-status?as_of=2026-06-01", member, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Contains(t, string(env.Data), `"is_active":false`)

	code, env = s.do(http.MethodPatch, "/api/cotisations/"+id+"/status", admin, map[string]string{"status": "validated"})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = s.do(http.MethodGet, "/api/cotisations/check-status?as_of=2026-06-01", member, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"is_active":true`)

	code, env = s.do(http.MethodGet, "/api/cotisations/check-status?as_of=June", member, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", env.Code)

	code, _ = s.do(http.MethodGet, "/api/cotisations", member, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodGet, "/api/cotisations/"+id+"/history", member, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(http.MethodGet, "/api/cotisations/"+id+"/history", admin, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)
}

func TestCreatePostWithImage(t *testing.T) {
	s := newServer(t, "test")
	author := s.user("author", models.RoleMember)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "<b>Hello</b>"))
	require.NoError(t, mw.WriteField("content", "First post"))
	require.NoError(t, mw.WriteField("category", "announcement"))
	fw, err := mw.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = fw.Write(append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, env := s.send(req, author)
	require.Equal(t, http.StatusCreated, code, env.Error)

	var post struct {
		Title  string `json:"title"`
		Image  string `json:"image"`
		Author struct {
			Nickname string `json:"nickname"`
		} `json:"author"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &post))
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "author", post.Author.Nickname)
	require.True(t, strings.HasPrefix(post.Image, uploads.PublicPrefix), post.Image)

	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, post.Image, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newServer(t, "test")

	code, env := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", env.Message)

	code, env = s.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", env.Code)
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"storefront/internal/models"
	"storefront/internal/session"
)

type fakeSessions struct {
	created   *session.Data
	destroyed int
	fail      error
}

func (s *fakeSessions) Create(_ context.Context, _ http.ResponseWriter, data *session.Data) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	s.created = data
	return "token-123", nil
}

func (s *fakeSessions) Destroy(context.Context, http.ResponseWriter, *http.Request) error {
	if s.fail != nil {
		return s.fail
	}
	s.destroyed++
	return nil
}

type fakeUsers struct {
	user     *models.User
	password string
	fail     error
}

func (u *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u.fail != nil {
		return nil, u.fail
	}
	if u.user != nil && strings.EqualFold(u.user.Email, email) {
		return u.user, nil
	}
	return nil, nil
}

func (u *fakeUsers) CheckPassword(_ *models.User, password string) bool {
	return password == u.password
}

func newAuthTest() (*Auth, *fakeSessions, *fakeUsers) {
	sessions := &fakeSessions{}
	users := &fakeUsers{
		user: &models.User{
			ID:          uuid.New(),
			Email:       "editor@example.com",
			DisplayName: "Editor",
			Role:        models.RoleEditor,
		},
		password: "s3cret-pass",
	}
	return NewAuth(sessions, users), sessions, users
}

func postLogin(a *Auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Login(rec, req)
	return rec
}

func TestLogin_ValidCredentials_ReturnsToken(t *testing.T) {
	a, sessions, users := newAuthTest()

	rec := postLogin(a, `{"email":" editor@example.com ","password":"s3cret-pass"}`)
	expectStatus(t, rec, http.StatusOK)

	var data struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decode(t, rec, &data)
	if data.Token != "token-123" {
		t.Errorf("token = %q", data.Token)
	}
	if data.User.ID != users.user.ID {
		t.Errorf("user id = %s, want %s", data.User.ID, users.user.ID)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not include the password hash")
	}
	if sessions.created == nil || sessions.created.Role != string(models.RoleEditor) {
		t.Errorf("session data = %+v", sessions.created)
	}
}

func TestLogin_WrongPassword_Returns401(t *testing.T) {
	a, sessions, _ := newAuthTest()

	rec := postLogin(a, `{"email":"editor@example.com","password":"nope"}`)
	expectStatus(t, rec, http.StatusUnauthorized)
	if sessions.created != nil {
		t.Error("no session should be created")
	}

	rec = postLogin(a, `{"email":"ghost@example.com","password":"s3cret-pass"}`)
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestLogin_MissingFields_Returns400(t *testing.T) {
	a, _, _ := newAuthTest()

	for _, body := range []string{`{"email":"editor@example.com"}`, `{"password":"x"}`, `not json`} {
		rec := postLogin(a, body)
		expectStatus(t, rec, http.StatusBadRequest)
	}
}

func TestLogin_LookupError_Returns500(t *testing.T) {
	a, _, users := newAuthTest()
	users.fail = errors.New("db down")

	rec := postLogin(a, `{"email":"editor@example.com","password":"s3cret-pass"}`)
	expectStatus(t, rec, http.StatusInternalServerError)
}

func TestMe(t *testing.T) {
	a, _, _ := newAuthTest()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	a.Me(rec, req)
	expectStatus(t, rec, http.StatusUnauthorized)

	sess := &session.Data{UserID: uuid.New(), Email: "editor@example.com", Role: "editor"}
	req = req.WithContext(ctxWithSession(req.Context(), sess))
	rec = httptest.NewRecorder()
	a.Me(rec, req)
	expectStatus(t, rec, http.StatusOK)

	var got session.Data
	decode(t, rec, &got)
	if got.UserID != sess.UserID || got.Role != "editor" {
		t.Errorf("got %+v", got)
	}
}

func TestLogout(t *testing.T) {
	a, sessions, _ := newAuthTest()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	a.Logout(rec, req)
	expectStatus(t, rec, http.StatusOK)
	if sessions.destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", sessions.destroyed)
	}

	sessions.fail = errors.New("valkey down")
	rec = httptest.NewRecorder()
	a.Logout(rec, req)
	expectStatus(t, rec, http.StatusInternalServerError)
}

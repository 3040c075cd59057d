package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mindnest-server/models"

	"github.com/golang-jwt/jwt/v5"
)

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) GetUserByID(id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func newFakeAuth(ids ...string) *Auth {
	users := map[string]*models.User{}
	for _, id := range ids {
		users[id] = &models.User{ID: id, Username: "user-" + id}
	}
	return NewAuth(&fakeUsers{users: users})
}

func expiredToken(t *testing.T, userID string) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func echoUserID(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(GetUserID(r)))
}

func TestRequireMissingToken(t *testing.T) {
	auth := newFakeAuth("u1")

	rec := httptest.NewRecorder()
	auth.Require(echoUserID)(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Authentication required") {
		t.Errorf("body = %q, want authentication-required message", rec.Body.String())
	}
}

func TestRequireInvalidToken(t *testing.T) {
	auth := newFakeAuth("u1")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	auth.Require(echoUserID)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid token") {
		t.Errorf("body = %q, want invalid-token message", rec.Body.String())
	}
}

func TestRequireExpiredToken(t *testing.T) {
	auth := newFakeAuth("u1")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+expiredToken(t, "u1"))
	rec := httptest.NewRecorder()
	auth.Require(echoUserID)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Token expired") {
		t.Errorf("body = %q, want token-expired message", rec.Body.String())
	}
}

func TestRequireUnknownUser(t *testing.T) {
	auth := newFakeAuth("u1")

	token, err := GenerateToken("ghost")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	auth.Require(echoUserID)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "User not found") {
		t.Errorf("body = %q, want user-not-found message", rec.Body.String())
	}
}

func TestRequireValidTokenFromCookie(t *testing.T) {
	auth := newFakeAuth("u1")

	token, err := GenerateToken("u1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	auth.Require(echoUserID)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "u1" {
		t.Errorf("user id = %q, want u1", rec.Body.String())
	}
}

func TestOptionalProceedsAnonymously(t *testing.T) {
	auth := newFakeAuth("u1")

	for name, req := range map[string]*http.Request{
		"no token":      httptest.NewRequest("GET", "/", nil),
		"expired token": func() *http.Request {
			r := httptest.NewRequest("GET", "/", nil)
			r.Header.Set("Authorization", "Bearer "+expiredToken(t, "u1"))
			return r
		}(),
		"garbage token": func() *http.Request {
			r := httptest.NewRequest("GET", "/", nil)
			r.Header.Set("Authorization", "Bearer junk")
			return r
		}(),
	} {
		rec := httptest.NewRecorder()
		auth.Optional(echoUserID)(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", name, rec.Code)
		}
		if rec.Body.String() != "" {
			t.Errorf("%s: user id = %q, want anonymous", name, rec.Body.String())
		}
	}
}

func TestOptionalResolvesIdentity(t *testing.T) {
	auth := newFakeAuth("u1")

	token, err := GenerateToken("u1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	auth.Optional(echoUserID)(rec, req)

	if rec.Body.String() != "u1" {
		t.Errorf("user id = %q, want u1", rec.Body.String())
	}
}

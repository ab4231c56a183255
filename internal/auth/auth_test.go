package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shubham-shewale/trade-sim/internal/auth"
)

const secret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := auth.IssueToken(secret, "u1", "Alice", "a@b.com", "pic", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := auth.ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Name != "Alice" || claims.Email != "a@b.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := auth.IssueToken(secret, "u1", "Alice", "a@b.com", "", time.Hour)
	if _, err := auth.ParseToken("other-secret", token); err == nil {
		t.Errorf("expected signature failure")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, _ := auth.IssueToken(secret, "u1", "Alice", "a@b.com", "", -time.Minute)
	if _, err := auth.ParseToken(secret, token); err == nil {
		t.Errorf("expected expiry failure")
	}
}

func middlewareRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", auth.Middleware(secret), func(c *gin.Context) {
		claims, _ := auth.UserFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID})
	})
	return r
}

func TestMiddleware_NoCookie(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	middlewareRouter().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestMiddleware_ValidCookie(t *testing.T) {
	token, _ := auth.IssueToken(secret, "u1", "Alice", "a@b.com", "", time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	middlewareRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "u1") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGoogle_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			if r.FormValue("code") != "good-code" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"access_token": "at-1"})
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer at-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"id": "g-42", "email": "a@b.com", "name": "Alice", "picture": "pic",
			})
		}
	}))
	defer srv.Close()

	g := auth.NewGoogle("cid", "csecret", "http://cb",
		srv.URL+"/auth", srv.URL+"/token", srv.URL+"/userinfo")

	profile, err := g.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if profile.ID != "g-42" || profile.Name != "Alice" {
		t.Errorf("profile = %+v", profile)
	}

	if _, err := g.Exchange(context.Background(), "bad-code"); err == nil {
		t.Errorf("expected error for rejected code")
	}
}

func TestGoogle_AuthCodeURL(t *testing.T) {
	g := auth.NewGoogle("cid", "cs", "http://cb", "https://auth", "https://token", "https://ui")
	u := g.AuthCodeURL("xyz")

	for _, part := range []string{"client_id=cid", "state=xyz", "scope=profile+email"} {
		if !strings.Contains(u, part) {
			t.Errorf("auth url missing %q: %s", part, u)
		}
	}
}

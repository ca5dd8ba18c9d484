package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("middleware-secret")

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{RequireAuth(testSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"staff_id": StaffID(c), "role": Role(c)})
	})
	r.GET("/probe", handlers...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	t.Run("valid token passes", func(t *testing.T) {
		tok := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "staff-1", "role": RoleStaff, "exp": time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		w := doGet(newRouter(), "Bearer "+tok)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing header rejected", func(t *testing.T) {
		if w := doGet(newRouter(), ""); w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		if w := doGet(newRouter(), "Token abc"); w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		tok := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "staff-1", "exp": time.Now().Add(-time.Hour).Unix(),
		}, testSecret)

		if w := doGet(newRouter(), "Bearer "+tok); w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		tok := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "staff-1", "exp": time.Now().Add(time.Hour).Unix(),
		}, []byte("other-secret"))

		if w := doGet(newRouter(), "Bearer "+tok); w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("missing sub rejected", func(t *testing.T) {
		tok := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		if w := doGet(newRouter(), "Bearer "+tok); w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	token := func(t *testing.T, role string) string {
		return signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "staff-1", "role": role, "exp": time.Now().Add(time.Hour).Unix(),
		}, testSecret)
	}

	t.Run("allowed role passes", func(t *testing.T) {
		r := newRouter(RoleManager, RoleAdmin)
		if w := doGet(r, "Bearer "+token(t, RoleManager)); w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("other role forbidden", func(t *testing.T) {
		r := newRouter(RoleManager, RoleAdmin)
		if w := doGet(r, "Bearer "+token(t, RoleStaff)); w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})

	t.Run("empty role forbidden", func(t *testing.T) {
		r := newRouter(RoleAdmin)
		if w := doGet(r, "Bearer "+token(t, "")); w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})
}

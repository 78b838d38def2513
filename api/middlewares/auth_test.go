package middlewares

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/moyoez/friendlyshare-go/types"
	"github.com/moyoez/friendlyshare-go/users"
)

func testDirectory(t *testing.T) *users.Directory {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	dir, err := users.FromCredentials(map[string]users.Credential{
		"reader": {Bcrypt: string(hash), Role: "readonly"},
		"admin":  {Bcrypt: string(hash), Role: "admin"},
	})
	if err != nil {
		t.Fatalf("FromCredentials: %v", err)
	}
	return dir
}

func protectedRouter(dir *users.Directory, required types.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireRole(dir, required), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no user in context")
			return
		}
		c.String(http.StatusOK, user.Name)
	})
	return r
}

func doGet(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func header(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestRequireRole(t *testing.T) {
	dir := testDirectory(t)

	tests := []struct {
		name     string
		required types.Role
		auth     string
		want     int
	}{
		{"no header", types.RoleReadOnly, "", http.StatusUnauthorized},
		{"garbage header", types.RoleReadOnly, "Bearer whatever", http.StatusUnauthorized},
		{"wrong password", types.RoleReadOnly, header("reader", "nope"), http.StatusUnauthorized},
		{"unknown user", types.RoleReadOnly, header("ghost", "pw"), http.StatusUnauthorized},
		{"reader passes floor", types.RoleReadOnly, header("reader", "pw"), http.StatusOK},
		{"reader below admin floor", types.RoleAdmin, header("reader", "pw"), http.StatusForbidden},
		{"admin passes admin floor", types.RoleAdmin, header("admin", "pw"), http.StatusOK},
		{"admin passes reader floor", types.RoleReadOnly, header("admin", "pw"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter(dir, tt.required)
			w := doGet(r, tt.auth)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 without a WWW-Authenticate challenge")
			}
		})
	}
}

func TestCurrentUserExposesName(t *testing.T) {
	dir := testDirectory(t)
	r := protectedRouter(dir, types.RoleReadOnly)
	w := doGet(r, header("reader", "pw"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "reader" {
		t.Errorf("body = %q, want reader", w.Body.String())
	}
}

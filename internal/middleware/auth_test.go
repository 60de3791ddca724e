package middleware

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"

	"tally/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testUser() *models.User {
	return &models.User{
		Base:  models.Base{ID: "0198b3a0-0000-7000-8000-000000000001"},
		Email: "auth@example.com",
	}
}

func protectedRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("userID"),
			"email":   c.GetString("email"),
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := protectedRouter()

	get := func(authHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/me", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing header", func(t *testing.T) {
		if rec := get(""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("wrong scheme", func(t *testing.T) {
		if rec := get("Basic dXNlcjpwYXNz"); rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if rec := get("Bearer not-a-jwt"); rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("refresh token rejected on access routes", func(t *testing.T) {
		refresh, err := GenerateRefreshToken(testUser())
		if err != nil {
			t.Fatalf("GenerateRefreshToken: %v", err)
		}
		if rec := get("Bearer " + refresh); rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("valid access token sets identity", func(t *testing.T) {
		user := testUser()
		access, err := GenerateAccessToken(user)
		if err != nil {
			t.Fatalf("GenerateAccessToken: %v", err)
		}

		rec := get("Bearer " + access)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := rec.Body.String()
		if !regexp.MustCompile(regexp.QuoteMeta(user.ID)).MatchString(body) {
			t.Errorf("response missing user ID: %s", body)
		}
		if !regexp.MustCompile(regexp.QuoteMeta(user.Email)).MatchString(body) {
			t.Errorf("response missing email: %s", body)
		}
	})
}

func TestValidateRefreshToken(t *testing.T) {
	user := testUser()

	t.Run("round trip", func(t *testing.T) {
		token, err := GenerateRefreshToken(user)
		if err != nil {
			t.Fatalf("GenerateRefreshToken: %v", err)
		}

		claims, err := ValidateRefreshToken(token)
		if err != nil {
			t.Fatalf("ValidateRefreshToken: %v", err)
		}
		if claims.UserID != user.ID {
			t.Errorf("expected user ID %q, got %q", user.ID, claims.UserID)
		}
		if claims.Email != user.Email {
			t.Errorf("expected email %q, got %q", user.Email, claims.Email)
		}
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		token, err := GenerateAccessToken(user)
		if err != nil {
			t.Fatalf("GenerateAccessToken: %v", err)
		}
		if _, err := ValidateRefreshToken(token); err == nil {
			t.Fatal("expected an error for an access token")
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		if _, err := ValidateRefreshToken("nope"); err == nil {
			t.Fatal("expected an error for a malformed token")
		}
	})
}

func TestHashToken(t *testing.T) {
	hash := HashToken("some-refresh-token")

	if !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(hash) {
		t.Errorf("expected 64 lowercase hex chars, got %q", hash)
	}
	if HashToken("some-refresh-token") != hash {
		t.Error("expected hashing to be deterministic")
	}
	if HashToken("another-token") == hash {
		t.Error("expected distinct tokens to hash differently")
	}
}

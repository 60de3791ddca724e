package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"tally/internal/testutil"
)

func TestHealth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	r := gin.New()
	r.GET("/api/health", NewHealthHandler(db, "1.2.3").Health)

	rec := doRequest(r, "GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := parseJSON(t, rec)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "1.2.3" {
		t.Errorf("version = %v, want 1.2.3", body["version"])
	}
	if body["database"] != "ok" {
		t.Errorf("database = %v, want ok", body["database"])
	}
	uptime, ok := body["uptime_seconds"].(float64)
	if !ok {
		t.Fatalf("uptime_seconds should be a number, got %T", body["uptime_seconds"])
	}
	if uptime < 0 {
		t.Errorf("uptime_seconds = %v, want >= 0", uptime)
	}
}

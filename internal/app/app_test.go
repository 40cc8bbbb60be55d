package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/headstock/internal/config"
)

func TestNewAppWithLocalStorage(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "app.db")), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Config{
		StorageDir:   filepath.Join(t.TempDir(), "uploads"),
		RateURL:      "http://127.0.0.1:1/unreachable",
		RateCurrency: "CNY",
	}
	a, err := NewApp(db, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if a.UploadsDir != cfg.StorageDir {
		t.Fatalf("uploads dir = %q", a.UploadsDir)
	}

	h := a.HTTPHandler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var body struct {
		DB struct {
			OK bool `json:"ok"`
		} `json:"db"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || !body.DB.OK {
		t.Fatalf("health = %s", rec.Body)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rate", nil))
	if !strings.Contains(rec.Body.String(), `"live":false`) {
		t.Fatalf("unreachable rate source should degrade: %s", rec.Body)
	}
}

func TestNewAppPrefersCloudinary(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "app.db")), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewApp(db, config.Config{
		CloudinaryCloudName: "demo",
		CloudinaryAPIKey:    "key",
		CloudinaryAPISecret: "secret",
	})
	if err != nil {
		t.Fatal(err)
	}
	if a.UploadsDir != "" {
		t.Fatalf("local uploads should be off, got %q", a.UploadsDir)
	}
}

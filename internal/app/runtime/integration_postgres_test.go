//go:build integration && postgres

package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/joho/godotenv"

	"github.com/astroquiz/astroquiz/internal/config"
	"github.com/astroquiz/astroquiz/pkg/logger"
)

// Integration test against Postgres: migrations, seeding and a create/read flow.
func TestIntegrationPostgres(t *testing.T) {
	_ = godotenv.Load() // allow .env for local runs
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration")
	}

	ctx := context.Background()
	cfg := memoryConfig()
	cfg.Database = config.DatabaseConfig{
		Driver:         config.DriverPostgres,
		DSN:            dsn,
		MaxOpenConns:   4,
		MigrateOnStart: true,
	}

	rt, err := NewApplication(ctx, cfg, logger.Discard())
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Shutdown(ctx) })

	server := httptest.NewServer(rt.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/quizzes")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list quizzes: %v", err)
	}
	var quizzes []map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&quizzes)
	resp.Body.Close()
	if len(quizzes) == 0 {
		t.Fatalf("expected seeded quizzes")
	}

	body, _ := json.Marshal(map[string]any{
		"sign":          "Pisces",
		"matchSign":     "Cancer",
		"compatibility": 95,
		"timestamp":     "2099-01-01T00:00:00.000Z",
	})
	resp, err = http.Post(server.URL+"/api/zodiac-games", "application/json", bytes.NewReader(body))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("create zodiac game: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(server.URL + "/api/zodiac-games/recent?limit=1")
	if err != nil {
		t.Fatalf("recent games: %v", err)
	}
	defer resp.Body.Close()
	var games []map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&games)
	if len(games) != 1 || games[0]["sign"] != "Pisces" {
		t.Fatalf("unexpected recent games: %v", games)
	}
}

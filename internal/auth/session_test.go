package auth

import (
	"os"
	"testing"
	"time"

	"outreach-tracker/internal/config"
	redisdb "outreach-tracker/internal/redis"
)

// Needs a reachable redis; set TEST_REDIS_ADDR to run.
func TestSessionSetGetDelete(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	cfg := &config.Config{}
	cfg.Redis.Addr = addr
	cfg.Redis.DB = 15
	rdb := redisdb.NewClient(cfg)

	userId := uint(12345)
	token := "session_test_token"
	duration := 2 * time.Second

	if err := SetSession(rdb, userId, token, duration); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}

	gotToken, err := GetSession(rdb, userId)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if gotToken != token {
		t.Errorf("expected token %q, got %q", token, gotToken)
	}

	if err := DeleteSession(rdb, userId); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	_, err = GetSession(rdb, userId)
	if err == nil {
		t.Errorf("expected error for deleted session, got nil")
	}
}

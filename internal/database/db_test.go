package database

import (
	"context"
	"testing"
	"time"
)

func TestConnectEmptyDSN(t *testing.T) {
	if _, err := Connect(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestConnectInvalidDSN(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := Connect(ctx, "://not-a-dsn"); err == nil {
		t.Fatal("expected error for malformed DSN")
	}
}

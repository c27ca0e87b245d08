package infra

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0", "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, err := mr.Get("k"); err != nil || v != "v" {
		t.Fatalf("expected k=v, got %q (%v)", v, err)
	}
}

func TestNewRedisClientErrors(t *testing.T) {
	for _, url := range []string{"", "not a url"} {
		if _, err := NewRedisClient(context.Background(), url, "x"); err == nil {
			t.Fatalf("expected error for %q", url)
		}
	}
}

func TestNewPostgresPoolErrors(t *testing.T) {
	for _, url := range []string{"", "postgres://%zz"} {
		if _, err := NewPostgresPool(context.Background(), url, "x"); err == nil {
			t.Fatalf("expected error for %q", url)
		}
	}
}

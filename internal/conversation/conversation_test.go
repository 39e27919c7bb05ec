package conversation

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, max int) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, max, time.Hour), mr
}

func TestStoresKeepNewestTurnsOldestFirst(t *testing.T) {
	redisStore, _ := newRedisStore(t, 6)
	stores := map[string]Store{
		"memory": NewMemoryStore(6),
		"redis":  redisStore,
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 8; i++ {
				if err := store.Append(ctx, "whatsapp:+1", Turn{Role: RoleUser, Message: fmt.Sprintf("m%d", i)}); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}
			_ = store.Append(ctx, "whatsapp:+2", Turn{Role: RoleUser, Message: "other"})

			turns, err := store.Recent(ctx, "whatsapp:+1", 6)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if len(turns) != 6 {
				t.Fatalf("len = %d, want 6", len(turns))
			}
			if turns[0].Message != "m2" || turns[5].Message != "m7" {
				t.Fatalf("unexpected window: first %q last %q", turns[0].Message, turns[5].Message)
			}

			if err := store.Clear(ctx, "whatsapp:+1"); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			turns, _ = store.Recent(ctx, "whatsapp:+1", 6)
			if len(turns) != 0 {
				t.Fatalf("expected empty history after clear, got %d", len(turns))
			}
			others, _ := store.Recent(ctx, "whatsapp:+2", 6)
			if len(others) != 1 {
				t.Fatalf("clear leaked into another handle: %v", others)
			}
		})
	}
}

func TestRedisStoreSetsTTL(t *testing.T) {
	store, mr := newRedisStore(t, 6)
	if err := store.Append(context.Background(), "h", Turn{Role: RoleAssistant, Message: "hi"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ttl := mr.TTL(keyPrefix + "h"); ttl != time.Hour {
		t.Fatalf("ttl = %s, want 1h", ttl)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(nil); got != "No previous conversation." {
		t.Fatalf("Format(nil) = %q", got)
	}
	long := strings.Repeat("x", 150)
	got := Format([]Turn{
		{Role: RoleUser, Message: "make a video"},
		{Role: RoleAssistant, Message: long},
	})
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	if lines[0] != "User: make a video" {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if lines[1] != "MakeVideo AI: "+strings.Repeat("x", 100)+"..." {
		t.Fatalf("line 1 not truncated: %q", lines[1])
	}
}

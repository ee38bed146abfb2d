package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// clock is a settable time source for expiry tests.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func openTestStore(t *testing.T, ttl time.Duration) (*Store, *clock) {
	t.Helper()
	st, err := Open(":memory:", ttl)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	clk := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	st.now = clk.now
	return st, clk
}

func TestOpen(t *testing.T) {
	st, err := Open(":memory:", 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	// Verify tables exist by querying them
	var name string
	err = st.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='responses'").Scan(&name)
	if err != nil {
		t.Fatalf("responses table not created: %v", err)
	}
	if name != "responses" {
		t.Errorf("expected table name 'responses', got %q", name)
	}
	if st.TTL() != DefaultTTL {
		t.Errorf("expected default TTL %v, got %v", DefaultTTL, st.TTL())
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	st, err := Open(path, time.Minute)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := st.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	st.Close()

	st2, err := Open(path, time.Minute)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer st2.Close()
	if got, ok := st2.Get("k"); !ok || string(got) != "v" {
		t.Errorf("expected v after reopen, got %q ok=%v", got, ok)
	}
}

func TestPutGet(t *testing.T) {
	st, _ := openTestStore(t, time.Minute)

	if _, ok := st.Get("https://example.com/character/1"); ok {
		t.Fatal("expected miss on empty store")
	}

	if err := st.Put("https://example.com/character/1", []byte(`{"id":1}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok := st.Get("https://example.com/character/1")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got) != `{"id":1}` {
		t.Errorf("unexpected body %q", got)
	}
}

func TestPutReplaces(t *testing.T) {
	st, _ := openTestStore(t, time.Minute)

	st.Put("k", []byte("old"))
	st.Put("k", []byte("new"))

	got, _ := st.Get("k")
	if string(got) != "new" {
		t.Errorf("expected new, got %q", got)
	}
	if n, _ := st.Len(); n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}

func TestExpiry(t *testing.T) {
	st, clk := openTestStore(t, 5*time.Minute)

	st.Put("k", []byte("v"))

	clk.advance(4*time.Minute + 59*time.Second)
	if _, ok := st.Get("k"); !ok {
		t.Error("entry should still be fresh")
	}

	clk.advance(time.Second)
	if _, ok := st.Get("k"); ok {
		t.Error("entry should have expired at the TTL")
	}

	// Expired rows stay until purged.
	if n, _ := st.Len(); n != 1 {
		t.Errorf("expected 1 row before purge, got %d", n)
	}
}

func TestPurge(t *testing.T) {
	st, clk := openTestStore(t, time.Minute)

	st.Put("old1", []byte("a"))
	st.Put("old2", []byte("b"))
	clk.advance(2 * time.Minute)
	st.Put("fresh", []byte("c"))

	removed, err := st.Purge()
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if n, _ := st.Len(); n != 1 {
		t.Errorf("expected 1 remaining, got %d", n)
	}
	if _, ok := st.Get("fresh"); !ok {
		t.Error("fresh entry should survive purge")
	}
}

func TestConcurrentAccess(t *testing.T) {
	st, _ := openTestStore(t, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			if err := st.Put(key, []byte(key)); err != nil {
				t.Errorf("Put %s failed: %v", key, err)
			}
			if _, ok := st.Get(key); !ok {
				t.Errorf("Get %s missed", key)
			}
		}(i)
	}
	wg.Wait()

	if n, _ := st.Len(); n != 10 {
		t.Errorf("expected 10 entries, got %d", n)
	}
}

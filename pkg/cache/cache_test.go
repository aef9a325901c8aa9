package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestMemo_ComputesOnce(t *testing.T) {
	var m Memo[string, *int]
	calls := 0
	compute := func() (*int, error) {
		calls++
		v := 42
		return &v, nil
	}

	first, hit, err := m.Get("a", compute)
	if err != nil || hit {
		t.Fatalf("first Get() = hit %v, err %v; want miss, nil", hit, err)
	}
	second, hit, err := m.Get("a", compute)
	if err != nil || !hit {
		t.Fatalf("second Get() = hit %v, err %v; want hit, nil", hit, err)
	}
	if first != second {
		t.Error("Get should return the identical value on a hit")
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestMemo_MemoizesErrors(t *testing.T) {
	var m Memo[string, int]
	boom := errors.New("boom")
	calls := 0
	for range 3 {
		_, _, err := m.Get("k", func() (int, error) {
			calls++
			return 0, boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("Get() error = %v, want %v", err, boom)
		}
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
}

func TestMemo_ConcurrentSameKey(t *testing.T) {
	var m Memo[string, int]
	var calls atomic.Int32
	var wg sync.WaitGroup

	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, _ := m.Get("shared", func() (int, error) {
				calls.Add(1)
				time.Sleep(20 * time.Millisecond)
				return 7, nil
			})
			if v != 7 {
				t.Errorf("Get() = %d, want 7", v)
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("compute called %d times, want 1", got)
	}
}

func TestMemo_DistinctKeys(t *testing.T) {
	var m Memo[string, string]
	for _, k := range []string{"a", "b", "c"} {
		v, _, _ := m.Get(k, func() (string, error) { return k + "!", nil })
		if v != k+"!" {
			t.Errorf("Get(%q) = %q", k, v)
		}
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
}

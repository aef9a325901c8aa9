package runner

import (
	"context"
	"sync"
	"testing"

	"github.com/matzehuels/mvnbox/pkg/buildspec"
	"github.com/matzehuels/mvnbox/pkg/errors"
)

func noop() Runner {
	return Func(func(context.Context, *buildspec.BuildSpec) error { return nil })
}

func TestRegistry_Empty(t *testing.T) {
	var r Registry
	if _, ok := r.Get(); ok {
		t.Error("empty registry should report no runner")
	}
	err := r.Execute(context.Background(), buildspec.New())
	if !errors.Is(err, errors.ErrCodeNotConfigured) {
		t.Errorf("Execute() error = %v, want %s", err, errors.ErrCodeNotConfigured)
	}
}

func TestRegistry_SetAndExecute(t *testing.T) {
	var r Registry
	var got *buildspec.BuildSpec
	r.Set(Func(func(_ context.Context, s *buildspec.BuildSpec) error {
		got = s
		return nil
	}))

	spec := buildspec.New()
	if err := r.Execute(context.Background(), spec); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != spec {
		t.Error("runner did not receive the build spec")
	}
}

func TestRegistry_SetReturnsPrevious(t *testing.T) {
	var r Registry
	first := noop()
	if prev := r.Set(first); prev != nil {
		t.Errorf("Set() on empty registry returned %v", prev)
	}
	if prev := r.Set(noop()); prev == nil {
		t.Error("Set() should return the previous runner")
	}
	r.Set(nil)
	if _, ok := r.Get(); ok {
		t.Error("Set(nil) should clear the slot")
	}
}

func TestRegistry_SetIfAbsent(t *testing.T) {
	var r Registry
	calls := 0
	factory := func() Runner {
		calls++
		return noop()
	}

	a := r.SetIfAbsent(factory)
	b := r.SetIfAbsent(factory)
	if a == nil || b == nil {
		t.Fatal("SetIfAbsent() returned nil")
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
	if cur, _ := r.Get(); cur == nil {
		t.Error("runner should be installed")
	}
}

func TestRegistry_SetIfAbsentConcurrent(t *testing.T) {
	var r Registry
	var mu sync.Mutex
	calls := 0
	var wg sync.WaitGroup
	results := make([]Runner, 32)

	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.SetIfAbsent(func() Runner {
				mu.Lock()
				calls++
				mu.Unlock()
				return &counting{}
			})
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
	for i, res := range results {
		if res != results[0] {
			t.Errorf("result %d differs from result 0", i)
		}
	}
}

type counting struct{ n int }

func (c *counting) Execute(context.Context, *buildspec.BuildSpec) error {
	c.n++
	return nil
}

func TestRegistry_NilSpec(t *testing.T) {
	var r Registry
	r.Set(noop())
	if err := r.Execute(context.Background(), nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Execute(nil) error = %v", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	prev := Set(nil)
	t.Cleanup(func() { Set(prev) })

	if err := Execute(context.Background(), buildspec.New()); !errors.Is(err, errors.ErrCodeNotConfigured) {
		t.Errorf("Execute() error = %v", err)
	}
	c := &counting{}
	SetIfAbsent(func() Runner { return c })
	if err := Execute(context.Background(), buildspec.New()); err != nil {
		t.Fatal(err)
	}
	if c.n != 1 {
		t.Errorf("runner executed %d times, want 1", c.n)
	}
}

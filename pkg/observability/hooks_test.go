package observability

import (
	"context"
	"testing"
	"time"
)

type countingCacheHooks struct {
	hits, misses, invalidations int
}

func (c *countingCacheHooks) OnHit(context.Context, string)        { c.hits++ }
func (c *countingCacheHooks) OnMiss(context.Context, string)       { c.misses++ }
func (c *countingCacheHooks) OnInvalidate(context.Context, string) { c.invalidations++ }

type countingResolveHooks struct {
	starts, completes, ambiguous int
}

func (c *countingResolveHooks) OnRecurseStart(context.Context, []string) { c.starts++ }
func (c *countingResolveHooks) OnRecurseComplete(context.Context, int, time.Duration, error) {
	c.completes++
}
func (c *countingResolveHooks) OnAmbiguousProvider(context.Context, string, []string, string) {
	c.ambiguous++
}

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	// Calling no-op hooks must not panic.
	Cache().OnHit(ctx, "/tmp/APKINDEX")
	Cache().OnMiss(ctx, "/tmp/APKINDEX")
	Cache().OnInvalidate(ctx, "/tmp/APKINDEX")
	Resolve().OnRecurseStart(ctx, []string{"musl"})
	Resolve().OnRecurseComplete(ctx, 1, time.Millisecond, nil)
	Resolve().OnAmbiguousProvider(ctx, "so:libGL.so.1", []string{"a", "b"}, "a")
}

func TestSetHooks(t *testing.T) {
	Reset()
	defer Reset()

	ch := &countingCacheHooks{}
	rh := &countingResolveHooks{}
	SetCacheHooks(ch)
	SetResolveHooks(rh)

	ctx := context.Background()
	Cache().OnHit(ctx, "a")
	Cache().OnMiss(ctx, "b")
	Cache().OnInvalidate(ctx, "c")
	Resolve().OnRecurseStart(ctx, nil)
	Resolve().OnRecurseComplete(ctx, 0, 0, nil)
	Resolve().OnAmbiguousProvider(ctx, "cap", nil, "x")

	if ch.hits != 1 || ch.misses != 1 || ch.invalidations != 1 {
		t.Errorf("cache hooks = %+v, want one of each", ch)
	}
	if rh.starts != 1 || rh.completes != 1 || rh.ambiguous != 1 {
		t.Errorf("resolve hooks = %+v, want one of each", rh)
	}
}

func TestSetNilKeepsPrevious(t *testing.T) {
	Reset()
	defer Reset()

	ch := &countingCacheHooks{}
	SetCacheHooks(ch)
	SetCacheHooks(nil)

	Cache().OnHit(context.Background(), "a")
	if ch.hits != 1 {
		t.Errorf("nil registration should keep previous hooks, hits = %d", ch.hits)
	}
}

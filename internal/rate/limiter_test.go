package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_AllowsUpToMax(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		if err != nil || !res.Allowed {
			t.Fatalf("hit %d: %+v, %v", i+1, res, err)
		}
	}

	res, err := l.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if res.Allowed {
		t.Fatalf("hit 4 debería rechazarse: %+v", res)
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("RetryAfter = %v", res.RetryAfter)
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "a"); !res.Allowed {
		t.Fatalf("primer hit de a rechazado")
	}
	if res, _ := l.Allow(ctx, "b"); !res.Allowed {
		t.Fatalf("el límite de a no debe afectar a b")
	}
	if res, _ := l.Allow(ctx, "a"); res.Allowed {
		t.Fatalf("segundo hit de a debería rechazarse")
	}
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	l := NewMemoryLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	l.Allow(ctx, "k")
	if res, _ := l.Allow(ctx, "k"); res.Allowed {
		t.Fatalf("ventana llena debería rechazar")
	}

	time.Sleep(30 * time.Millisecond)
	if res, _ := l.Allow(ctx, "k"); !res.Allowed {
		t.Fatalf("ventana nueva debería permitir")
	}
}

package locks

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLocker_ExclusiveUntilReleased(t *testing.T) {
	t.Parallel()

	l := NewMemoryLocker()
	release, ok, err := l.TryAcquire(context.Background(), "generation:u1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	if _, ok, err := l.TryAcquire(context.Background(), "generation:u1", time.Minute); err != nil || ok {
		t.Fatalf("second acquire while held: ok=%v err=%v", ok, err)
	}

	// different name is independent
	otherRelease, ok, err := l.TryAcquire(context.Background(), "generation:u2", time.Minute)
	if err != nil || !ok {
		t.Fatalf("unrelated lock blocked: ok=%v err=%v", ok, err)
	}
	otherRelease()

	release()
	release2, ok, err := l.TryAcquire(context.Background(), "generation:u1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}
	release2()
}

func TestMemoryLocker_TTLExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	l := &memoryLocker{held: make(map[string]time.Time), clock: func() time.Time { return now }}

	if _, ok, _ := l.TryAcquire(context.Background(), "generation:u1", time.Minute); !ok {
		t.Fatal("first acquire failed")
	}

	now = now.Add(30 * time.Second)
	if _, ok, _ := l.TryAcquire(context.Background(), "generation:u1", time.Minute); ok {
		t.Fatal("lock must still be held before ttl")
	}

	now = now.Add(31 * time.Second)
	release, ok, _ := l.TryAcquire(context.Background(), "generation:u1", time.Minute)
	if !ok {
		t.Fatal("expired lock must be acquirable")
	}
	release()
}

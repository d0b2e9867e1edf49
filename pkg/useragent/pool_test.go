package useragent

import (
	"sync"
	"testing"
)

func TestNewPool_Default(t *testing.T) {
	p := NewPool(nil)
	if p.GetSequential() == "" {
		t.Error("expected a default User-Agent")
	}
}

func TestPool_Sequential(t *testing.T) {
	uas := []string{"A/1.0", "B/2.0", "C/3.0"}
	p := NewPool(uas)

	for i := 0; i < 6; i++ {
		got := p.GetSequential()
		want := uas[i%len(uas)]
		if got != want {
			t.Errorf("call %d: got %q, want %q", i, got, want)
		}
	}
}

func TestPool_Random(t *testing.T) {
	uas := []string{"A/1.0", "B/2.0"}
	p := NewPool(uas)

	for i := 0; i < 10; i++ {
		got := p.GetRandom()
		if got != "A/1.0" && got != "B/2.0" {
			t.Errorf("unexpected User-Agent %q", got)
		}
	}
}

func TestPool_ConcurrentAccess(t *testing.T) {
	p := NewPool([]string{"A/1.0", "B/2.0", "C/3.0"})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if p.GetSequential() == "" {
					t.Error("empty User-Agent under concurrency")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestPool_CopiesInput(t *testing.T) {
	uas := []string{"A/1.0"}
	p := NewPool(uas)
	uas[0] = "mutated"
	if got := p.GetSequential(); got != "A/1.0" {
		t.Errorf("pool affected by caller mutation: %q", got)
	}
}

package memory

import (
	"sync"
	"testing"

	"intellicart-assistant-be/pkg/store"
)

func TestGetOrCreateReturnsSamePointer(t *testing.T) {
	repo := NewSessionRepository()

	a := repo.GetOrCreate("s1")
	b := repo.GetOrCreate("s1")
	if a != b {
		t.Error("expected the same session instance for one id")
	}
	if a.Stage != store.StageAskUsername {
		t.Errorf("stage = %q", a.Stage)
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	repo := NewSessionRepository()

	const n = 32
	results := make([]*store.Session, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = repo.GetOrCreate("racy")
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent GetOrCreate returned different sessions")
		}
	}
}

func TestSaveAndGet(t *testing.T) {
	repo := NewSessionRepository()

	s := store.NewSession("s2")
	s.Stage = store.StageActive
	repo.Save(s)

	got, found := repo.Get("s2")
	if !found {
		t.Fatal("expected saved session")
	}
	if got.Stage != store.StageActive {
		t.Errorf("stage = %q", got.Stage)
	}
}

func TestSessionsNeverExpire(t *testing.T) {
	repo := NewSessionRepository()
	repo.Save(store.NewSession("forever"))

	for key, item := range repo.cache.Items() {
		if item.Expiration != 0 {
			t.Errorf("session %q has expiration %d, want none", key, item.Expiration)
		}
	}
}

func TestDelete(t *testing.T) {
	repo := NewSessionRepository()
	repo.Save(store.NewSession("gone"))
	repo.Delete("gone")

	if _, found := repo.Get("gone"); found {
		t.Error("expected session to be deleted")
	}
}

package crawler

import (
	"sync"
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("RegisterClaimsOnce", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry(10)
		if !r.Register("https://example.com/") {
			t.Fatal("first Register() = false, want true")
		}
		if r.Register("https://example.com/") {
			t.Error("duplicate Register() = true, want false")
		}
		if !r.Known("https://example.com/") {
			t.Error("Known() = false after Register")
		}
	})

	t.Run("RegisterEnforcesBudget", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry(2)
		r.Register("https://example.com/a")
		r.Register("https://example.com/b")
		if r.Register("https://example.com/c") {
			t.Error("Register() over budget = true, want false")
		}
		if r.Count() != 2 {
			t.Errorf("Count() = %d, want 2", r.Count())
		}
	})

	t.Run("ClaimBasePathOnce", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry(10)
		if !r.ClaimBasePath("/blog") {
			t.Fatal("first ClaimBasePath() = false, want true")
		}
		if r.ClaimBasePath("/blog") {
			t.Error("second ClaimBasePath() = true, want false")
		}
		if !r.ClaimBasePath("/docs") {
			t.Error("other base path should be claimable")
		}
	})

	t.Run("SnapshotCopiesOutcomes", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry(10)
		r.Register("https://example.com/ok")
		r.Register("https://example.com/bad")
		r.SetStatus("https://example.com/ok", 200)
		r.SetError("https://example.com/bad", KindNoResponse)

		snap := r.Snapshot()
		if snap["https://example.com/ok"].Status != 200 {
			t.Errorf("ok status = %d, want 200", snap["https://example.com/ok"].Status)
		}
		if snap["https://example.com/bad"].Error != KindNoResponse {
			t.Errorf("bad error = %q, want %q", snap["https://example.com/bad"].Error, KindNoResponse)
		}

		// mutating the snapshot must not touch the registry
		snap["https://example.com/ok"] = snap["https://example.com/bad"]
		if r.Snapshot()["https://example.com/ok"].Status != 200 {
			t.Error("snapshot mutation leaked into registry")
		}
	})

	t.Run("SetStatusIgnoresUnknownURL", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry(10)
		r.SetStatus("https://example.com/never-registered", 200)
		if r.Count() != 0 {
			t.Errorf("Count() = %d, want 0", r.Count())
		}
	})

	t.Run("ConcurrentRegistrationStaysWithinBudget", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry(5)
		urls := []string{
			"https://example.com/a", "https://example.com/b",
			"https://example.com/c", "https://example.com/d",
			"https://example.com/e", "https://example.com/f",
			"https://example.com/g", "https://example.com/h",
		}

		var wg sync.WaitGroup
		for _, href := range urls {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.Register(href)
			}()
		}
		wg.Wait()

		if r.Count() != 5 {
			t.Errorf("Count() = %d, want 5", r.Count())
		}
	})
}

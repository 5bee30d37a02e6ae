package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wander/internal/models/db_models"
	"wander/pkg/expiry"
	"wander/pkg/utils"
)

// fakeClock drives the expiry scheduler in simulated time. Advance runs
// due timer callbacks on their own goroutines, like time.AfterFunc.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	when    time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) expiry.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{clock: c, when: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)

	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.when.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	var wg sync.WaitGroup
	for _, t := range due {
		wg.Add(1)
		go func(f func()) {
			defer wg.Done()
			f()
		}(t.f)
	}
	wg.Wait()
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func waitForClearCalls(t *testing.T, repo *mockAccountRepo, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		repo.mu.Lock()
		got := repo.clearCalls
		repo.mu.Unlock()
		if got >= want {
			if got > want {
				t.Fatalf("clear writes: got %d, want %d", got, want)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d clear writes", want)
}

func clearCallCount(repo *mockAccountRepo) int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.clearCalls
}

// The full lifecycle against a real scheduler: a 10 minute token consumed
// just inside its window works, one presented just past it fails, and the
// scheduler empties abandoned slots on its own.
func TestTokenLifecycleWithRealScheduler(t *testing.T) {
	clock := newFakeClock(testStart)
	repo := newMockAccountRepo()
	mail := &mockMailService{}
	scheduler := expiry.NewScheduler(repo, expiry.WithClock(clock))
	defer scheduler.Stop()

	service := NewAccountService(repo, mail, scheduler, clock.Now)

	hash, err := utils.HashPassword("oldpass123")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	account := &db_models.Account{Email: "user@example.com", PasswordHash: hash, Active: true}
	repo.add(account)

	// Consume one second inside the window.
	if err := service.RequestPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	token := mail.lastSent(t).token

	clock.Advance(10*time.Minute - time.Second)
	if err := service.ResetPassword(context.Background(), "user@example.com", token, "newpass456"); err != nil {
		t.Fatalf("consume inside window: %v", err)
	}

	// The consume disarmed the timer and queued one deferred safety clear.
	if scheduler.Armed("password_reset", account.ID) {
		t.Fatal("timer still armed after consume")
	}
	waitForClearCalls(t, repo, 1)

	// Long after the original deadline nothing else writes.
	clock.Advance(time.Hour)
	time.Sleep(50 * time.Millisecond)
	if got := clearCallCount(repo); got != 1 {
		t.Fatalf("clear writes after consume: got %d, want 1", got)
	}
}

func TestTokenExpiresUnderRealScheduler(t *testing.T) {
	clock := newFakeClock(testStart)
	repo := newMockAccountRepo()
	mail := &mockMailService{}
	scheduler := expiry.NewScheduler(repo, expiry.WithClock(clock))
	defer scheduler.Stop()

	service := NewAccountService(repo, mail, scheduler, clock.Now)

	hash, err := utils.HashPassword("oldpass123")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	account := &db_models.Account{Email: "user@example.com", PasswordHash: hash, Active: true}
	repo.add(account)

	if err := service.RequestPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	token := mail.lastSent(t).token

	// The deadline passes; the scheduler clears the abandoned slot once.
	clock.Advance(10*time.Minute + time.Second)
	waitForClearCalls(t, repo, 1)

	stored := repo.get(t, account.ID)
	active, digest, expires := stored.PendingSlot(db_models.PurposePasswordReset)
	if active || digest != nil || expires != nil {
		t.Fatal("expired slot not emptied by the scheduler")
	}

	err = service.ResetPassword(context.Background(), "user@example.com", token, "newpass456")
	if !errors.Is(err, utils.ErrInvalidOrExpiredToken) {
		t.Fatalf("expired token: expected ErrInvalidOrExpiredToken, got %v", err)
	}

	// The password is untouched.
	if err := utils.ComparePasswords(repo.get(t, account.ID).PasswordHash, "oldpass123"); err != nil {
		t.Fatal("password changed by expired token")
	}

	clock.Advance(time.Hour)
	time.Sleep(50 * time.Millisecond)
	if got := clearCallCount(repo); got != 1 {
		t.Fatalf("clear writes: got %d, want 1", got)
	}
}

// A request racing a consume for the same (purpose, account) must leave
// exactly one coherent outcome: the slot is either fully armed or fully
// empty, a successful consume really applied its effect, and a fresh
// token afterwards always redeems. The stretched repo writes force the
// two paths to interleave.
func TestConcurrentRequestAndConsumeSingleWinner(t *testing.T) {
	for i := 0; i < 20; i++ {
		clock := newFakeClock(testStart)
		repo := newMockAccountRepo()
		repo.writeDelay = time.Millisecond
		mail := &mockMailService{}
		scheduler := expiry.NewScheduler(repo, expiry.WithClock(clock))

		service := NewAccountService(repo, mail, scheduler, clock.Now)

		hash, err := utils.HashPassword("oldpass123")
		if err != nil {
			t.Fatalf("hashing password: %v", err)
		}
		account := &db_models.Account{Email: "user@example.com", PasswordHash: hash, Active: true}
		repo.add(account)

		if err := service.RequestPasswordReset(context.Background(), "user@example.com"); err != nil {
			t.Fatalf("seeding token: %v", err)
		}
		token := mail.lastSent(t).token

		var wg sync.WaitGroup
		var requestErr, consumeErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			requestErr = service.RequestPasswordReset(context.Background(), "user@example.com")
		}()
		go func() {
			defer wg.Done()
			consumeErr = service.ResetPassword(context.Background(), "user@example.com", token, "newpass456")
		}()
		wg.Wait()

		// Let the clear worker finish whatever the race queued.
		time.Sleep(50 * time.Millisecond)

		if requestErr != nil {
			t.Fatalf("iteration %d: racing request failed: %v", i, requestErr)
		}
		if consumeErr != nil && !errors.Is(consumeErr, utils.ErrInvalidOrExpiredToken) {
			t.Fatalf("iteration %d: racing consume failed with %v", i, consumeErr)
		}

		stored := repo.get(t, account.ID)
		active, digest, expires := stored.PendingSlot(db_models.PurposePasswordReset)
		if active && (digest == nil || expires == nil) {
			t.Fatalf("iteration %d: armed slot missing digest or expiry", i)
		}
		if !active && (digest != nil || expires != nil) {
			t.Fatalf("iteration %d: cleared slot kept stale columns", i)
		}

		if consumeErr == nil {
			if err := utils.ComparePasswords(stored.PasswordHash, "newpass456"); err != nil {
				t.Fatalf("iteration %d: consume won but password not applied", i)
			}
		}

		// Whatever the interleaving did, the next token must work.
		if err := service.RequestPasswordReset(context.Background(), "user@example.com"); err != nil {
			t.Fatalf("iteration %d: fresh request: %v", i, err)
		}
		fresh := mail.lastSent(t).token
		if err := service.ResetPassword(context.Background(), "user@example.com", fresh, "finalpass789"); err != nil {
			t.Fatalf("iteration %d: fresh token did not redeem: %v", i, err)
		}

		scheduler.Stop()
	}
}

// Even when the clear write races a re-request, the latest token always
// wins and exactly one slot state survives.
func TestReRequestAfterExpiryUnderRealScheduler(t *testing.T) {
	clock := newFakeClock(testStart)
	repo := newMockAccountRepo()
	mail := &mockMailService{}
	scheduler := expiry.NewScheduler(repo, expiry.WithClock(clock))
	defer scheduler.Stop()

	service := NewAccountService(repo, mail, scheduler, clock.Now)

	hash, err := utils.HashPassword("oldpass123")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	account := &db_models.Account{Email: "user@example.com", PasswordHash: hash, Active: true}
	repo.add(account)

	if err := service.RequestPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	clock.Advance(11 * time.Minute)
	waitForClearCalls(t, repo, 1)

	// A fresh request after natural expiry arms a brand new window.
	if err := service.RequestPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("second request: %v", err)
	}
	token := mail.lastSent(t).token

	clock.Advance(5 * time.Minute)
	if err := service.ResetPassword(context.Background(), "user@example.com", token, "newpass456"); err != nil {
		t.Fatalf("consume re-issued token: %v", err)
	}
	if err := utils.ComparePasswords(repo.get(t, account.ID).PasswordHash, "newpass456"); err != nil {
		t.Fatal("new password does not verify")
	}
}

package repositories

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wander/internal/models/db_models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := db.AutoMigrate(&db_models.Account{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

func seedAccount(t *testing.T, repo AccountRepository, email string, active bool) *db_models.Account {
	t.Helper()

	account := &db_models.Account{
		Name:         "Seed User",
		Email:        email,
		PasswordHash: "$2a$12$notarealhash",
		Role:         "user",
		Active:       active,
	}
	if err := repo.InsertTx(account, context.Background()); err != nil {
		t.Fatalf("inserting account: %v", err)
	}
	return account
}

func TestAccountRepositoryLookups(t *testing.T) {
	repo := NewAccountRepository(openTestDB(t))
	account := seedAccount(t, repo, "user@example.com", true)

	byEmail, err := repo.FindByEmail(context.Background(), "user@example.com")
	if err != nil || byEmail == nil {
		t.Fatalf("FindByEmail: %v, %v", byEmail, err)
	}
	if byEmail.ID != account.ID {
		t.Fatalf("FindByEmail returned account %s, want %s", byEmail.ID, account.ID)
	}

	byID, err := repo.FindById(context.Background(), account.ID)
	if err != nil || byID == nil {
		t.Fatalf("FindById: %v, %v", byID, err)
	}

	missing, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("missing account: got %v, %v, want nil, nil", missing, err)
	}
}

func TestAccountRepositoryFindInactiveByEmail(t *testing.T) {
	repo := NewAccountRepository(openTestDB(t))
	seedAccount(t, repo, "alive@example.com", true)
	dormant := seedAccount(t, repo, "dormant@example.com", false)

	got, err := repo.FindInactiveByEmail(context.Background(), "dormant@example.com")
	if err != nil || got == nil {
		t.Fatalf("FindInactiveByEmail: %v, %v", got, err)
	}
	if got.ID != dormant.ID {
		t.Fatalf("wrong account: %s", got.ID)
	}

	// Active accounts never match.
	got, err = repo.FindInactiveByEmail(context.Background(), "alive@example.com")
	if err != nil || got != nil {
		t.Fatalf("active account matched: %v, %v", got, err)
	}
}

func TestFindByPendingToken(t *testing.T) {
	repo := NewAccountRepository(openTestDB(t))
	account := seedAccount(t, repo, "user@example.com", true)

	now := time.Now().UTC().Truncate(time.Second)
	expires := now.Add(10 * time.Minute)
	account.SetPending(db_models.PurposePasswordReset, "digest-a", expires)
	if err := repo.UpdateFields(context.Background(), account.ID, account.PendingUpdates(db_models.PurposePasswordReset)); err != nil {
		t.Fatalf("writing slot: %v", err)
	}

	got, err := repo.FindByPendingToken(context.Background(), db_models.PurposePasswordReset, "user@example.com", "digest-a", now)
	if err != nil || got == nil {
		t.Fatalf("valid token: %v, %v", got, err)
	}
	if got.ID != account.ID {
		t.Fatalf("wrong account: %s", got.ID)
	}

	cases := []struct {
		name    string
		purpose db_models.PendingPurpose
		email   string
		digest  string
		now     time.Time
	}{
		{"wrong digest", db_models.PurposePasswordReset, "user@example.com", "digest-b", now},
		{"wrong email", db_models.PurposePasswordReset, "other@example.com", "digest-a", now},
		{"wrong purpose", db_models.PurposeActivation, "user@example.com", "digest-a", now},
		{"at deadline", db_models.PurposePasswordReset, "user@example.com", "digest-a", expires},
		{"past deadline", db_models.PurposePasswordReset, "user@example.com", "digest-a", expires.Add(time.Second)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.FindByPendingToken(context.Background(), tc.purpose, tc.email, tc.digest, tc.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != nil {
				t.Fatal("token matched")
			}
		})
	}
}

func TestFindByPendingTokenIgnoresClearedSlot(t *testing.T) {
	repo := NewAccountRepository(openTestDB(t))
	account := seedAccount(t, repo, "user@example.com", true)

	now := time.Now().UTC().Truncate(time.Second)
	account.SetPending(db_models.PurposePasswordReset, "digest-a", now.Add(10*time.Minute))
	if err := repo.UpdateFields(context.Background(), account.ID, account.PendingUpdates(db_models.PurposePasswordReset)); err != nil {
		t.Fatalf("writing slot: %v", err)
	}

	fields := db_models.PendingColumns[db_models.PurposePasswordReset]
	if err := repo.ClearFields(context.Background(), account.ID, fields); err != nil {
		t.Fatalf("ClearFields: %v", err)
	}

	got, err := repo.FindByPendingToken(context.Background(), db_models.PurposePasswordReset, "user@example.com", "digest-a", now)
	if err != nil || got != nil {
		t.Fatalf("cleared slot matched: %v, %v", got, err)
	}

	stored, err := repo.FindById(context.Background(), account.ID)
	if err != nil || stored == nil {
		t.Fatalf("FindById: %v, %v", stored, err)
	}
	active, digest, expires := stored.PendingSlot(db_models.PurposePasswordReset)
	if active || digest != nil || expires != nil {
		t.Fatalf("slot columns survive clear: %v %v %v", active, digest, expires)
	}
}

func TestUpdateFieldsTouchesOnlyGivenColumns(t *testing.T) {
	repo := NewAccountRepository(openTestDB(t))
	account := seedAccount(t, repo, "user@example.com", true)

	now := time.Now().UTC().Truncate(time.Second)
	account.SetPending(db_models.PurposeEmailUpdate, "digest-x", now.Add(10*time.Minute))
	if err := repo.UpdateFields(context.Background(), account.ID, account.PendingUpdates(db_models.PurposeEmailUpdate)); err != nil {
		t.Fatalf("writing slot: %v", err)
	}

	if err := repo.UpdateFields(context.Background(), account.ID, map[string]interface{}{
		"name": "Renamed",
	}); err != nil {
		t.Fatalf("updating name: %v", err)
	}

	stored, err := repo.FindById(context.Background(), account.ID)
	if err != nil || stored == nil {
		t.Fatalf("FindById: %v, %v", stored, err)
	}
	if stored.Name != "Renamed" {
		t.Fatalf("name = %q", stored.Name)
	}
	if stored.Email != "user@example.com" || stored.PasswordHash == "" {
		t.Fatal("unrelated columns rewritten")
	}
	active, digest, _ := stored.PendingSlot(db_models.PurposeEmailUpdate)
	if !active || digest == nil || *digest != "digest-x" {
		t.Fatal("pending slot disturbed by unrelated update")
	}
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"wander/internal/models/db_models"
)

type AccountRepository interface {
	InsertTx(account *db_models.Account, ctx context.Context) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Account, error)
	FindByEmail(ctx context.Context, email string) (*db_models.Account, error)
	FindInactiveByEmail(ctx context.Context, email string) (*db_models.Account, error)

	// FindByPendingToken resolves the account whose slot for purpose is
	// armed with the given digest and has not expired yet. The expiry
	// bound is exclusive: a token presented exactly at its deadline no
	// longer matches.
	FindByPendingToken(ctx context.Context, purpose db_models.PendingPurpose, email, digest string, now time.Time) (*db_models.Account, error)

	// UpdateFields writes only the given columns, leaving the rest of the
	// row untouched.
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error

	ClearFields(ctx context.Context, accountID uuid.UUID, fields []string) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{
		db: db,
	}
}

func (a *accountRepository) InsertTx(account *db_models.Account, ctx context.Context) error {
	return a.db.WithContext(ctx).Create(account).Error
}

func (a *accountRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Account, error) {
	var account db_models.Account
	err := a.db.WithContext(ctx).First(&account, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

func (a *accountRepository) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	var account db_models.Account
	err := a.db.WithContext(ctx).First(&account, "email = ?", email).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

func (a *accountRepository) FindInactiveByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	var account db_models.Account
	err := a.db.WithContext(ctx).
		Where("email = ? AND active = ?", email, false).
		First(&account).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

func (a *accountRepository) FindByPendingToken(ctx context.Context, purpose db_models.PendingPurpose, email, digest string, now time.Time) (*db_models.Account, error) {
	cols, ok := db_models.PendingColumns[purpose]
	if !ok {
		return nil, fmt.Errorf("unknown pending purpose %q", purpose)
	}

	var account db_models.Account
	err := a.db.WithContext(ctx).
		Where("email = ?", email).
		Where(fmt.Sprintf("%s = ?", cols[0]), true).
		Where(fmt.Sprintf("%s = ?", cols[1]), digest).
		Where(fmt.Sprintf("%s > ?", cols[2]), now).
		First(&account).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

func (a *accountRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return a.db.WithContext(ctx).
		Model(&db_models.Account{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ClearFields empties the given pending-slot columns: false for the flag
// column, NULL for digest and expiry. This is the write the expiry
// scheduler issues when a timer fires.
func (a *accountRepository) ClearFields(ctx context.Context, accountID uuid.UUID, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	updates := make(map[string]interface{}, len(fields))
	for _, column := range fields {
		if strings.HasSuffix(column, "_active") {
			updates[column] = false
		} else {
			updates[column] = nil
		}
	}

	return a.db.WithContext(ctx).
		Model(&db_models.Account{}).
		Where("id = ?", accountID).
		Updates(updates).Error
}

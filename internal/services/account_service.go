package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"wander/internal/models/db_models"
	"wander/internal/models/request_models"
	"wander/internal/repositories"
	"wander/pkg/utils"
)

// tokenTTL bounds every pending operation; the same deadline is written
// to the account row and handed to the expiry scheduler.
const tokenTTL = 10 * time.Minute

// ExpiryScheduler is the slice of the scheduler the account service
// needs. Satisfied by *expiry.Scheduler.
type ExpiryScheduler interface {
	Arm(purpose string, accountID uuid.UUID, expiresAt time.Time, fields []string)
	Disarm(purpose string, accountID uuid.UUID, cancelOnly bool)
}

type AccountServiceInterface interface {
	CreateAccount(request request_models.SignUpRequest) error
	GetAccount(ctx context.Context, accountID uuid.UUID) (*db_models.Account, error)

	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, newPassword string) error

	RequestEmailChange(ctx context.Context, accountID uuid.UUID, currentPassword string) error
	ConfirmEmailChange(ctx context.Context, currentEmail, token, newEmail string) error
	VerifyNewEmail(ctx context.Context, currentEmail, token, newEmail string) error

	RequestActivation(ctx context.Context, email string) error
	ConfirmActivation(ctx context.Context, email, token string) error

	UpdatePassword(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword string) error
	UpdateName(ctx context.Context, accountID uuid.UUID, currentPassword, newName string) error
	DeactivateAccount(ctx context.Context, accountID uuid.UUID, currentPassword string) error
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	mailService IMailService
	scheduler   ExpiryScheduler
	now         func() time.Time
}

func NewAccountService(
	accountRepo repositories.AccountRepository,
	mailService IMailService,
	scheduler ExpiryScheduler,
	now func() time.Time,
) AccountServiceInterface {
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		accountRepo: accountRepo,
		mailService: mailService,
		scheduler:   scheduler,
		now:         now,
	}
}

func (a *AccountService) CreateAccount(request request_models.SignUpRequest) error {

	existingAccount, err := a.accountRepo.FindByEmail(context.Background(), request.Email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if existingAccount != nil {
		return utils.ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return utils.ErrDatabaseError
	}

	newAccount := &db_models.Account{
		Name:         request.DisplayName,
		Email:        request.Email,
		PasswordHash: hashedPassword,
		Role:         "user", // default role
		Active:       true,
	}

	if err := a.accountRepo.InsertTx(newAccount, context.Background()); err != nil {
		return utils.ErrDatabaseError
	}

	return nil
}

func (a *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*db_models.Account, error) {
	account, err := a.accountRepo.FindById(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	return account, nil
}

// startPending runs the shared start sequence of every purpose: supersede
// any previous pending operation for the same key, write the fresh slot,
// arm the expiry timer and hand the raw token to the mailer. A delivery
// failure undoes the slot as if the operation never started.
func (a *AccountService) startPending(
	ctx context.Context,
	account *db_models.Account,
	purpose db_models.PendingPurpose,
	deliver func(rawToken string) error,
) error {
	// A fresh request always wins over a stale one.
	a.scheduler.Disarm(string(purpose), account.ID, true)

	rawToken, digest, err := utils.GenerateToken()
	if err != nil {
		log.Printf("token generation failed: %v", err)
		return err
	}

	expires := a.now().Add(tokenTTL)
	account.SetPending(purpose, digest, expires)

	if err := a.accountRepo.UpdateFields(ctx, account.ID, account.PendingUpdates(purpose)); err != nil {
		a.scheduler.Disarm(string(purpose), account.ID, true)
		return utils.ErrDatabaseError
	}

	a.scheduler.Arm(string(purpose), account.ID, expires, db_models.PendingColumns[purpose])

	if err := deliver(rawToken); err != nil {
		log.Printf("sending %s token to account %s failed: %v", purpose, account.ID, err)
		// Cancel the timer and let the scheduler's clear worker empty the
		// slot right behind the write above.
		a.scheduler.Disarm(string(purpose), account.ID, false)
		return utils.ErrDeliveryFailed
	}

	return nil
}

// consumePending resolves the account holding an unexpired pending slot
// that matches the presented token. Every non-match collapses into the
// same uniform error.
func (a *AccountService) consumePending(
	ctx context.Context,
	purpose db_models.PendingPurpose,
	email, token string,
) (*db_models.Account, error) {
	digest := utils.HashToken(token)

	account, err := a.accountRepo.FindByPendingToken(ctx, purpose, email, digest, a.now())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrInvalidOrExpiredToken
	}

	return account, nil
}

// finishPending applies the purpose's effect and empties the slot in one
// partial update, then releases the timer. The disarm queues a deferred
// safety clear that rewrites the already empty columns.
func (a *AccountService) finishPending(
	ctx context.Context,
	account *db_models.Account,
	purpose db_models.PendingPurpose,
	effect map[string]interface{},
) error {
	account.ClearPending(purpose)

	updates := account.PendingUpdates(purpose)
	for column, value := range effect {
		updates[column] = value
	}

	if err := a.accountRepo.UpdateFields(ctx, account.ID, updates); err != nil {
		return utils.ErrDatabaseError
	}

	a.scheduler.Disarm(string(purpose), account.ID, false)

	return nil
}

func (a *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}

	return a.startPending(ctx, account, db_models.PurposePasswordReset, func(rawToken string) error {
		return a.mailService.SendMailToResetPassword(account.Email, rawToken)
	})
}

func (a *AccountService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	account, err := a.consumePending(ctx, db_models.PurposePasswordReset, email, token)
	if err != nil {
		return err
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return utils.ErrDatabaseError
	}

	return a.finishPending(ctx, account, db_models.PurposePasswordReset, map[string]interface{}{
		"password_hash":       hashedPassword,
		"password_changed_at": a.now(),
	})
}

func (a *AccountService) RequestEmailChange(ctx context.Context, accountID uuid.UUID, currentPassword string) error {
	account, err := a.accountRepo.FindById(ctx, accountID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}

	if err := utils.ComparePasswords(account.PasswordHash, currentPassword); err != nil {
		return utils.ErrInvalidCredentials
	}

	return a.startPending(ctx, account, db_models.PurposeEmailUpdate, func(rawToken string) error {
		return a.mailService.SendMailToChangeEmail(account.Email, rawToken)
	})
}

// ConfirmEmailChange consumes the email-update token and immediately
// starts the confirmation leg: a fresh token is mailed to the new
// address, and only its consumption actually switches the email over.
func (a *AccountService) ConfirmEmailChange(ctx context.Context, currentEmail, token, newEmail string) error {
	account, err := a.consumePending(ctx, db_models.PurposeEmailUpdate, currentEmail, token)
	if err != nil {
		return err
	}

	// Burn the update token before the confirm leg starts.
	if err := a.finishPending(ctx, account, db_models.PurposeEmailUpdate, nil); err != nil {
		return err
	}

	return a.startPending(ctx, account, db_models.PurposeEmailConfirm, func(rawToken string) error {
		return a.mailService.SendMailToConfirmEmail(newEmail, account.Email, rawToken)
	})
}

func (a *AccountService) VerifyNewEmail(ctx context.Context, currentEmail, token, newEmail string) error {
	account, err := a.consumePending(ctx, db_models.PurposeEmailConfirm, currentEmail, token)
	if err != nil {
		return err
	}

	return a.finishPending(ctx, account, db_models.PurposeEmailConfirm, map[string]interface{}{
		"email": newEmail,
	})
}

func (a *AccountService) RequestActivation(ctx context.Context, email string) error {
	account, err := a.accountRepo.FindInactiveByEmail(ctx, email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return fmt.Errorf("%w: account not found or already active", utils.ErrPreconditionFailed)
	}

	return a.startPending(ctx, account, db_models.PurposeActivation, func(rawToken string) error {
		return a.mailService.SendMailToActivateAccount(account.Email, rawToken)
	})
}

func (a *AccountService) ConfirmActivation(ctx context.Context, email, token string) error {
	account, err := a.consumePending(ctx, db_models.PurposeActivation, email, token)
	if err != nil {
		return err
	}

	return a.finishPending(ctx, account, db_models.PurposeActivation, map[string]interface{}{
		"active": true,
	})
}

func (a *AccountService) UpdatePassword(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword string) error {
	account, err := a.accountRepo.FindById(ctx, accountID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}

	if err := utils.ComparePasswords(account.PasswordHash, currentPassword); err != nil {
		return utils.ErrInvalidCredentials
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return utils.ErrDatabaseError
	}

	if err := a.accountRepo.UpdateFields(ctx, account.ID, map[string]interface{}{
		"password_hash":       hashedPassword,
		"password_changed_at": a.now(),
	}); err != nil {
		return utils.ErrDatabaseError
	}

	return nil
}

func (a *AccountService) UpdateName(ctx context.Context, accountID uuid.UUID, currentPassword, newName string) error {
	account, err := a.accountRepo.FindById(ctx, accountID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}

	if err := utils.ComparePasswords(account.PasswordHash, currentPassword); err != nil {
		return utils.ErrInvalidCredentials
	}

	if err := a.accountRepo.UpdateFields(ctx, account.ID, map[string]interface{}{
		"name": newName,
	}); err != nil {
		return utils.ErrDatabaseError
	}

	return nil
}

func (a *AccountService) DeactivateAccount(ctx context.Context, accountID uuid.UUID, currentPassword string) error {
	account, err := a.accountRepo.FindById(ctx, accountID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}

	if err := utils.ComparePasswords(account.PasswordHash, currentPassword); err != nil {
		return utils.ErrInvalidCredentials
	}

	if err := a.accountRepo.UpdateFields(ctx, account.ID, map[string]interface{}{
		"active": false,
	}); err != nil {
		return utils.ErrDatabaseError
	}

	return nil
}

package db_models

import "time"

// PendingPurpose identifies one of the four token-backed account operations.
// Each purpose owns an independent pending slot on the account row.
type PendingPurpose string

const (
	PurposePasswordReset PendingPurpose = "password_reset"
	PurposeEmailUpdate   PendingPurpose = "email_update"
	PurposeEmailConfirm  PendingPurpose = "email_confirm"
	PurposeActivation    PendingPurpose = "activation"
)

type Account struct {
	BaseModel
	Name         string
	Email        string `gorm:"unique"`
	PasswordHash string
	Photo        string
	Role         string `gorm:"default:user"`

	PasswordChangedAt *time.Time

	// Deactivated accounts keep their row; the activation flow re-enables them.
	Active bool `gorm:"default:true"`

	// Pending slots. The three columns of a slot are always written and
	// cleared together, never one at a time.
	PasswordResetActive  bool
	PasswordResetDigest  *string
	PasswordResetExpires *time.Time

	EmailUpdateActive  bool
	EmailUpdateDigest  *string
	EmailUpdateExpires *time.Time

	EmailConfirmActive  bool
	EmailConfirmDigest  *string
	EmailConfirmExpires *time.Time

	ActivationActive  bool
	ActivationDigest  *string
	ActivationExpires *time.Time
}

// PendingColumns maps each purpose to its slot's column names, in
// [flag, digest, expires] order. The repository uses it to build lookup
// predicates and clear updates; the expiry scheduler is handed the same
// slice when a timer is armed.
var PendingColumns = map[PendingPurpose][]string{
	PurposePasswordReset: {"password_reset_active", "password_reset_digest", "password_reset_expires"},
	PurposeEmailUpdate:   {"email_update_active", "email_update_digest", "email_update_expires"},
	PurposeEmailConfirm:  {"email_confirm_active", "email_confirm_digest", "email_confirm_expires"},
	PurposeActivation:    {"activation_active", "activation_digest", "activation_expires"},
}

// SetPending populates the slot for purpose in one shot.
func (a *Account) SetPending(purpose PendingPurpose, digest string, expires time.Time) {
	switch purpose {
	case PurposePasswordReset:
		a.PasswordResetActive, a.PasswordResetDigest, a.PasswordResetExpires = true, &digest, &expires
	case PurposeEmailUpdate:
		a.EmailUpdateActive, a.EmailUpdateDigest, a.EmailUpdateExpires = true, &digest, &expires
	case PurposeEmailConfirm:
		a.EmailConfirmActive, a.EmailConfirmDigest, a.EmailConfirmExpires = true, &digest, &expires
	case PurposeActivation:
		a.ActivationActive, a.ActivationDigest, a.ActivationExpires = true, &digest, &expires
	}
}

// ClearPending empties the slot for purpose.
func (a *Account) ClearPending(purpose PendingPurpose) {
	switch purpose {
	case PurposePasswordReset:
		a.PasswordResetActive, a.PasswordResetDigest, a.PasswordResetExpires = false, nil, nil
	case PurposeEmailUpdate:
		a.EmailUpdateActive, a.EmailUpdateDigest, a.EmailUpdateExpires = false, nil, nil
	case PurposeEmailConfirm:
		a.EmailConfirmActive, a.EmailConfirmDigest, a.EmailConfirmExpires = false, nil, nil
	case PurposeActivation:
		a.ActivationActive, a.ActivationDigest, a.ActivationExpires = false, nil, nil
	}
}

// PendingSlot reports the current slot values for purpose.
func (a *Account) PendingSlot(purpose PendingPurpose) (active bool, digest *string, expires *time.Time) {
	switch purpose {
	case PurposePasswordReset:
		return a.PasswordResetActive, a.PasswordResetDigest, a.PasswordResetExpires
	case PurposeEmailUpdate:
		return a.EmailUpdateActive, a.EmailUpdateDigest, a.EmailUpdateExpires
	case PurposeEmailConfirm:
		return a.EmailConfirmActive, a.EmailConfirmDigest, a.EmailConfirmExpires
	case PurposeActivation:
		return a.ActivationActive, a.ActivationDigest, a.ActivationExpires
	}
	return false, nil, nil
}

// PendingUpdates returns the partial-update map for the slot's current
// values, so a slot write never touches unrelated columns.
func (a *Account) PendingUpdates(purpose PendingPurpose) map[string]interface{} {
	cols := PendingColumns[purpose]
	active, digest, expires := a.PendingSlot(purpose)
	return map[string]interface{}{
		cols[0]: active,
		cols[1]: digest,
		cols[2]: expires,
	}
}

package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"wander/internal/models/request_models"
	"wander/internal/models/response_models"
	"wander/internal/services"
	"wander/pkg/utils"
)

type AccountController struct {
	accountService services.AccountServiceInterface
}

func NewAccountController(accountService services.AccountServiceInterface) *AccountController {
	return &AccountController{
		accountService: accountService,
	}
}

// Register godoc
// @Summary Register a new account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.SignUpRequest true "Account registration payload"
// @Success 200 {object} utils.APIResponse
// @Router /accounts/register [post]
func (a *AccountController) Register(c *gin.Context) {
	var req request_models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.accountService.CreateAccount(req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Account created successfully")
}

// GetAccount godoc
// @Summary Get account details
// @Tags Accounts
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /accounts/{id} [get]
func (a *AccountController) GetAccount(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	account, err := a.accountService.GetAccount(context.Background(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.AccountResponse{
		ID:     account.ID.String(),
		Name:   account.Name,
		Email:  account.Email,
		Role:   account.Role,
		Active: account.Active,
	}, "")
}

// ForgotPassword godoc
// @Summary Request a password reset token
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.RequestPasswordReset true "Forgot password payload"
// @Success 200 {object} utils.APIResponse
// @Router /accounts/forgot-password [post]
func (a *AccountController) ForgotPassword(c *gin.Context) {
	var req request_models.RequestPasswordReset
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.accountService.RequestPasswordReset(context.Background(), req.Email); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"reset_email": req.Email}, "Token sent to email")
}

// ResetPassword godoc
// @Summary Redeem a password reset token
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.ResetPasswordRequest true "New password payload"
// @Success 200 {object} utils.APIResponse
// @Router /accounts/reset-password/{email}/{token} [patch]
func (a *AccountController) ResetPassword(c *gin.Context) {
	var req request_models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	err := a.accountService.ResetPassword(context.Background(),
		c.Param("email"), c.Param("token"), req.NewPassword)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Password has been reset")
}

// RequestEmailChange godoc
// @Summary Request an email change token for the current address
// @Tags Accounts
// @Router /accounts/{id}/update-email [post]
func (a *AccountController) RequestEmailChange(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	var req request_models.RequestEmailChange
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.accountService.RequestEmailChange(context.Background(), accountID, req.CurrentPassword); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Token sent to email")
}

// ConfirmEmailChange godoc
// @Summary Redeem an email change token and send the confirmation token to the new address
// @Tags Accounts
// @Router /accounts/reset-email/{email}/{token} [patch]
func (a *AccountController) ConfirmEmailChange(c *gin.Context) {
	var req request_models.ConfirmEmailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	err := a.accountService.ConfirmEmailChange(context.Background(),
		c.Param("email"), c.Param("token"), req.NewEmail)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"confirm_email": req.NewEmail}, "Token sent to new email")
}

// VerifyNewEmail godoc
// @Summary Redeem an email confirmation token and apply the new address
// @Tags Accounts
// @Router /accounts/confirm-email/{email}/{currentEmail}/{token} [patch]
func (a *AccountController) VerifyNewEmail(c *gin.Context) {
	err := a.accountService.VerifyNewEmail(context.Background(),
		c.Param("currentEmail"), c.Param("token"), c.Param("email"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Email has been updated")
}

// RequestActivation godoc
// @Summary Request an account activation token
// @Tags Accounts
// @Router /accounts/activate [post]
func (a *AccountController) RequestActivation(c *gin.Context) {
	var req request_models.RequestActivation
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.accountService.RequestActivation(context.Background(), req.Email); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Token sent to email")
}

// ConfirmActivation godoc
// @Summary Redeem an activation token
// @Tags Accounts
// @Router /accounts/activate-confirm/{email}/{token} [patch]
func (a *AccountController) ConfirmActivation(c *gin.Context) {
	err := a.accountService.ConfirmActivation(context.Background(),
		c.Param("email"), c.Param("token"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Account is now active")
}

// UpdatePassword godoc
// @Summary Change password with the current one
// @Tags Accounts
// @Router /accounts/{id}/password [patch]
func (a *AccountController) UpdatePassword(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	var req request_models.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	err = a.accountService.UpdatePassword(context.Background(), accountID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Password updated successfully")
}

// UpdateName godoc
// @Summary Change display name with the current password
// @Tags Accounts
// @Router /accounts/{id}/name [patch]
func (a *AccountController) UpdateName(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	var req request_models.UpdateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	err = a.accountService.UpdateName(context.Background(), accountID, req.CurrentPassword, req.NewName)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"new_name": req.NewName}, "Name updated successfully")
}

// Deactivate godoc
// @Summary Deactivate the account (re-enabled via the activation flow)
// @Tags Accounts
// @Router /accounts/{id} [delete]
func (a *AccountController) Deactivate(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	var req request_models.DeactivateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	err = a.accountService.DeactivateAccount(context.Background(), accountID, req.CurrentPassword)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Account deactivated")
}

package request_models

type SignUpRequest struct {
	DisplayName string `json:"display_name" binding:"required,min=3,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
}

type RequestPasswordReset struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	NewPassword        string `json:"new_password" binding:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" binding:"required,eqfield=NewPassword"`
}

type RequestEmailChange struct {
	CurrentPassword string `json:"current_password" binding:"required"`
}

type ConfirmEmailChangeRequest struct {
	NewEmail        string `json:"new_email" binding:"required,email"`
	NewEmailConfirm string `json:"new_email_confirm" binding:"required,eqfield=NewEmail"`
}

type RequestActivation struct {
	Email string `json:"email" binding:"required,email"`
}

type UpdatePasswordRequest struct {
	CurrentPassword    string `json:"current_password" binding:"required"`
	NewPassword        string `json:"new_password" binding:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" binding:"required,eqfield=NewPassword"`
}

type UpdateNameRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewName         string `json:"new_name" binding:"required,min=3,max=50"`
}

type DeactivateAccountRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
}

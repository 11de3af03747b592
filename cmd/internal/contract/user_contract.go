package contract

type SignUpRequest struct {
	Username string `json:"username" validate:"required,min=2,max=80,nospaces"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=64,maxbytes=72,hasspecial,hasdigit,hasupper,haslower"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=64,maxbytes=72"`
}

// TokenRequest carries a raw verify or reset token taken from an email link.
type TokenRequest struct {
	Token string `json:"token" validate:"required,max=128"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	UserID   string `json:"userId" validate:"required,numeric"`
	Token    string `json:"token" validate:"required,max=128"`
	Password string `json:"password" validate:"required,min=8,max=64,maxbytes=72,hasspecial,hasdigit,hasupper,haslower"`
}

type UserResponse struct {
	ID         string `json:"_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
	IsAdmin    bool   `json:"isAdmin"`
	CreatedAt  string `json:"createdAt"`
}

type SignUpResponse struct {
	Message   string        `json:"message"`
	Success   bool          `json:"success"`
	SavedUser *UserResponse `json:"savedUser"`
}

type ResetTokenResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"notekeeper/cmd/internal/contract"
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/domain/sqlite/repository"
	"notekeeper/cmd/internal/infrastructure/mailer"
	"notekeeper/cmd/internal/security"
	"notekeeper/cmd/internal/utils"
	"notekeeper/cmd/internal/utils/apierror"
	"notekeeper/cmd/internal/utils/uid"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	TokenRepository
	FindByID(id int64) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	ExistsByEmailOrUsername(email, username string) (bool, error)
	Create(user *entity.User) error
}

// AccountMailer delivers the verify and reset emails.
type AccountMailer interface {
	SendAccountEmail(ctx context.Context, address string, purpose entity.TokenPurpose, token string) (*mailer.SendResult, error)
}

type UserService struct {
	UserRepo UserRepository
	Tokens   *TokenService
	Mailer   AccountMailer
	Sessions *security.SessionIssuer
	Validate *validator.Validate
}

func NewUserService(
	userRepo UserRepository,
	tokens *TokenService,
	accountMailer AccountMailer,
	sessions *security.SessionIssuer,
	validate *validator.Validate,
) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Tokens:   tokens,
		Mailer:   accountMailer,
		Sessions: sessions,
		Validate: validate,
	}
}

// SignUp stores a new, unverified account and mails its verification link.
//
// If the email cannot be delivered the account is kept, the caller gets an
// Upstream error and may ask for a new link later.
func (u *UserService) SignUp(ctx context.Context, req *contract.SignUpRequest) (*contract.SignUpResponse, apierror.ErrorResponse) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	found, err := u.UserRepo.ExistsByEmailOrUsername(req.Email, req.Username)
	if err != nil {
		log.Errorf("failed to check if user %s already exists: %v", req.Email, err)
		return nil, apierror.InternalServerError
	}

	if found {
		return nil, apierror.UserAlreadyExistsError
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		log.Errorf("failed to hash password: %v", err)
		return nil, apierror.InternalServerError
	}

	now := utils.NowUTC()
	user := &entity.User{
		ID:           uid.Generate(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Two racing sign-ups can both pass the check above, the unique
	// indexes decide.
	if err := u.UserRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierror.UserAlreadyExistsError
		}
		log.Errorf("failed to create user %s: %v", req.Email, err)
		return nil, apierror.InternalServerError
	}

	if apierr := u.sendAccountEmail(ctx, user, entity.TokenVerify); apierr != nil {
		return nil, apierr
	}

	return &contract.SignUpResponse{
		Message:   "User is created successfully",
		Success:   true,
		SavedUser: toUserResponse(user),
	}, nil
}

// Login checks the credentials and returns the session cookie to set.
func (u *UserService) Login(req *contract.LoginRequest) (*http.Cookie, apierror.ErrorResponse) {
	req.Email = normalizeEmail(req.Email)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", req.Email, err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		security.CompareMissing(req.Password)
		return nil, apierror.CredentialsMismatchError
	}

	if !security.ComparePassword(user.PasswordHash, req.Password) {
		return nil, apierror.CredentialsMismatchError
	}

	if !user.IsVerified {
		return nil, apierror.UserNotVerifiedError
	}

	token, err := u.Sessions.Issue(user)
	if err != nil {
		log.Errorf("failed to sign session for user %d: %v", user.ID, err)
		return nil, apierror.InternalServerError
	}
	return u.Sessions.Cookie(token), nil
}

// Authenticate resolves a session token to its user.
func (u *UserService) Authenticate(token string) (*entity.User, apierror.ErrorResponse) {
	if token == "" {
		return nil, apierror.UnauthorizedError
	}

	claims, err := u.Sessions.Parse(token)
	if err != nil {
		log.Debugf("rejected session token: %v", err)
		return nil, apierror.InvalidAuthTokenError
	}

	userID, err := uid.Parse(claims.UserID)
	if err != nil {
		return nil, apierror.InvalidAuthTokenError
	}

	user, err := u.UserRepo.FindByID(userID)
	if err != nil {
		log.Errorf("failed to fetch session user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	if user == nil || !user.IsVerified {
		return nil, apierror.InvalidAuthTokenError
	}
	return user, nil
}

func (u *UserService) Me(actor *entity.User) *contract.UserResponse {
	return toUserResponse(actor)
}

func (u *UserService) VerifyEmail(req *contract.TokenRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	user, err := u.Tokens.Consume(entity.TokenVerify, req.Token, map[string]any{"is_verified": true})
	if errors.Is(err, ErrTokenInvalid) {
		return apierror.InvalidOrExpiredTokenError
	}

	if err != nil {
		log.Errorf("failed to verify email: %v", err)
		return apierror.InternalServerError
	}

	log.Infof("user %d verified their email", user.ID)
	return nil
}

// ResendVerification mails a new verification link to a pending account.
func (u *UserService) ResendVerification(ctx context.Context, req *contract.EmailRequest) apierror.ErrorResponse {
	user, apierr := u.findByEmail(req)
	if apierr != nil {
		return apierr
	}

	if user.IsVerified {
		return apierror.UserAlreadyVerifiedError
	}
	return u.sendAccountEmail(ctx, user, entity.TokenVerify)
}

func (u *UserService) ForgetPassword(ctx context.Context, req *contract.EmailRequest) apierror.ErrorResponse {
	user, apierr := u.findByEmail(req)
	if apierr != nil {
		return apierr
	}
	return u.sendAccountEmail(ctx, user, entity.TokenReset)
}

// CheckResetToken tells the reset page which account a link belongs to.
// The token stays valid.
func (u *UserService) CheckResetToken(req *contract.TokenRequest) (*contract.ResetTokenResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.Tokens.Peek(entity.TokenReset, req.Token)
	if errors.Is(err, ErrTokenInvalid) {
		return nil, apierror.InvalidOrExpiredTokenError
	}

	if err != nil {
		log.Errorf("failed to check reset token: %v", err)
		return nil, apierror.InternalServerError
	}

	return &contract.ResetTokenResponse{
		Message: "Token is valid",
		UserID:  uid.Format(user.ID),
	}, nil
}

// ResetPassword replaces the password of the token's owner. The token is
// consumed in the same update that writes the new hash.
func (u *UserService) ResetPassword(req *contract.ResetPasswordRequest) apierror.ErrorResponse {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Token = strings.TrimSpace(req.Token)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	userID, err := uid.Parse(req.UserID)
	if err != nil {
		return apierror.NewInvalidParamTypeError("userId", "id")
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		log.Errorf("failed to hash password: %v", err)
		return apierror.InternalServerError
	}

	err = u.Tokens.ConsumeOwned(userID, entity.TokenReset, req.Token, map[string]any{"password_hash": hash})
	if errors.Is(err, ErrTokenInvalid) {
		return apierror.InvalidOrExpiredTokenError
	}

	if err != nil {
		log.Errorf("failed to reset password of user %d: %v", userID, err)
		return apierror.InternalServerError
	}

	log.Infof("user %d reset their password", userID)
	return nil
}

func (u *UserService) findByEmail(req *contract.EmailRequest) (*entity.User, apierror.ErrorResponse) {
	req.Email = normalizeEmail(req.Email)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to find user (%s) by email: %v", req.Email, err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.UserNotFoundError
	}
	return user, nil
}

func (u *UserService) sendAccountEmail(ctx context.Context, user *entity.User, purpose entity.TokenPurpose) apierror.ErrorResponse {
	token, err := u.Tokens.Issue(user.ID, purpose)
	if err != nil {
		log.Errorf("failed to issue %s token for user %d: %v", purpose, user.ID, err)
		return apierror.InternalServerError
	}

	if _, err := u.Mailer.SendAccountEmail(ctx, user.Email, purpose, token); err != nil {
		log.Errorf("failed to send %s email to user %d: %v", purpose, user.ID, err)
		return apierror.EmailUnavailableError.With("user", user.ID)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(user *entity.User) *contract.UserResponse {
	return &contract.UserResponse{
		ID:         uid.Format(user.ID),
		Username:   user.Username,
		Email:      user.Email,
		IsVerified: user.IsVerified,
		IsAdmin:    user.IsAdmin,
		CreatedAt:  utils.FormatEpoch(user.CreatedAt),
	}
}

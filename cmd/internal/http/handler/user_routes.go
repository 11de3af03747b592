package handler

import (
	"context"
	"net/http"

	"notekeeper/cmd/internal/contract"
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/security"
	"notekeeper/cmd/internal/utils"
	"notekeeper/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type UserService interface {
	SignUp(ctx context.Context, req *contract.SignUpRequest) (*contract.SignUpResponse, apierror.ErrorResponse)
	Login(req *contract.LoginRequest) (*http.Cookie, apierror.ErrorResponse)
	Me(actor *entity.User) *contract.UserResponse
	VerifyEmail(req *contract.TokenRequest) apierror.ErrorResponse
	ResendVerification(ctx context.Context, req *contract.EmailRequest) apierror.ErrorResponse
	ForgetPassword(ctx context.Context, req *contract.EmailRequest) apierror.ErrorResponse
	CheckResetToken(req *contract.TokenRequest) (*contract.ResetTokenResponse, apierror.ErrorResponse)
	ResetPassword(req *contract.ResetPasswordRequest) apierror.ErrorResponse
}

type DefaultUserRoute struct {
	UserService UserService
}

func NewUserDefault(userService UserService) *DefaultUserRoute {
	return &DefaultUserRoute{UserService: userService}
}

func (u *DefaultUserRoute) SignUp(c echo.Context) error {
	var req contract.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := u.UserService.SignUp(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (u *DefaultUserRoute) Login(c echo.Context) error {
	var req contract.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	cookie, apierr := u.UserService.Login(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	c.SetCookie(cookie)
	return c.JSON(http.StatusOK, &contract.MessageResponse{Message: "Login successful", Success: true})
}

func (u *DefaultUserRoute) Logout(c echo.Context) error {
	c.SetCookie(security.ClearCookie())
	return c.JSON(http.StatusOK, &contract.MessageResponse{Message: "Logout successful", Success: true})
}

func (u *DefaultUserRoute) Me(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	resp := &contract.MessageDataResponse[*contract.UserResponse]{
		Message: "User found",
		Data:    u.UserService.Me(user),
	}
	return c.JSON(http.StatusOK, resp)
}

func (u *DefaultUserRoute) VerifyEmail(c echo.Context) error {
	var req contract.TokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := u.UserService.VerifyEmail(&req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, &contract.MessageResponse{Message: "Email verified", Success: true})
}

func (u *DefaultUserRoute) ResendVerification(c echo.Context) error {
	var req contract.EmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := u.UserService.ResendVerification(c.Request().Context(), &req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, &contract.MessageResponse{Message: "Verification email sent", Success: true})
}

func (u *DefaultUserRoute) ForgetPassword(c echo.Context) error {
	var req contract.EmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := u.UserService.ForgetPassword(c.Request().Context(), &req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, &contract.MessageResponse{Message: "Email sent successfully", Success: true})
}

func (u *DefaultUserRoute) CheckResetToken(c echo.Context) error {
	var req contract.TokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := u.UserService.CheckResetToken(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (u *DefaultUserRoute) ResetPassword(c echo.Context) error {
	var req contract.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := u.UserService.ResetPassword(&req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, &contract.MessageResponse{Message: "Password updated successfully", Success: true})
}

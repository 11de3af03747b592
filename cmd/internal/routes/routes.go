package routes

import (
	"notekeeper/cmd/internal/http/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Notes   *handler.DefaultNoteRoute
	Users   *handler.DefaultUserRoute
	Util    *handler.DefaultUtilRoute
	Session echo.MiddlewareFunc
}

// Register mounts the JSON API under /api and the health probe at /health.
func Register(e *echo.Echo, h *Handlers) {
	api := e.Group("/api")

	// Notes
	api.POST("/notes", h.Notes.CreateNote)
	api.GET("/notes", h.Notes.GetNotes)
	api.PUT("/notes", h.Notes.UpdateNote)
	api.DELETE("/notes", h.Notes.DeleteNote)

	// Users
	api.POST("/users/signUp", h.Users.SignUp)
	api.POST("/users/logIn", h.Users.Login)
	api.GET("/users/logOut", h.Users.Logout)
	api.GET("/users/me", h.Users.Me, h.Session)
	api.POST("/users/verifyEmail", h.Users.VerifyEmail)
	api.POST("/users/resendVerification", h.Users.ResendVerification)
	api.POST("/users/forgetPassword", h.Users.ForgetPassword)
	api.POST("/users/reset-password", h.Users.CheckResetToken)
	api.POST("/users/resetPassword", h.Users.ResetPassword)

	// Liveness probe, pings the database
	e.GET("/health", h.Util.Health)
}

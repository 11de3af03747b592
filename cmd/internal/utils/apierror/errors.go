package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int
}

// Kind tags every API error with the class of failure it represents.
// The HTTP status is derived from the kind at the boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
)

func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

type APIError struct {
	Kind    Kind   `json:"-"`
	Message string `json:"message"`
	Success bool   `json:"success"`

	// Status overrides the kind's default status when non-zero.
	Status int `json:"-"`
	// Context carries structured details for logs, it is never serialized.
	Context map[string]any `json:"-"`
}

func (a *APIError) Code() int {
	if a.Status != 0 {
		return a.Status
	}
	return a.Kind.Status()
}

func (a *APIError) Error() string {
	return fmt.Sprintf("%s: %s", a.Kind, a.Message)
}

// With returns a copy of the error carrying an extra context entry.
// Shared sentinel values are never mutated.
func (a *APIError) With(key string, value any) *APIError {
	cp := *a
	cp.Context = make(map[string]any, len(a.Context)+1)
	for k, v := range a.Context {
		cp.Context[k] = v
	}
	cp.Context[key] = value
	return &cp
}

type StructuredError struct {
	Errors  map[string][]string `json:"errors"`
	Success bool                `json:"success"`
	Status  int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

func (s *StructuredError) Add(field, problem string) {
	s.Errors[field] = append(s.Errors[field], problem)
}

var (
	MalformedBodyError  = New(KindValidation, "Malformed JSON body")
	InternalServerError = New(KindInternal, "Internal server error")
	NotFoundError       = New(KindNotFound, "Resource not found")

	/*
	 * Used for accounts and sessions
	 */
	UserAlreadyExistsError     = New(KindConflict, "User already exists")
	UserNotFoundError          = New(KindNotFound, "No user found")
	UserAlreadyVerifiedError   = New(KindValidation, "User is already verified")
	UserNotVerifiedError       = New(KindForbidden, "User is not verified yet, check your email to verify your account")
	CredentialsMismatchError   = New(KindUnauthorized, "Invalid email or password")
	UnauthorizedError          = New(KindUnauthorized, "Please login to continue")
	InvalidAuthTokenError      = New(KindUnauthorized, "Invalid or expired session")
	InvalidOrExpiredTokenError = NewWithStatus(KindNotFound, http.StatusBadRequest, "Invalid or expired token")
	EmailUnavailableError      = New(KindUpstream, "Email service temporarily unavailable")

	/*
	 * Used for notes
	 */
	NoteNotDeletedError = NewWithStatus(KindNotFound, http.StatusBadRequest, "Error in deleting")
)

// FromValidationError maps validator failures to a 400 StructuredError.
// Any other error means the validator was misused and yields a 500.
func FromValidationError(err error) ErrorResponse {
	var ve validator.ValidationErrors
	ok := errors.As(err, &ve)
	if !ok {
		return InternalServerError
	}

	problems := map[string][]string{}
	for _, fe := range ve {
		field := fe.Field()

		switch fe.Tag() {
		case "required":
			problems[field] = append(problems[field], "This field is required")
		case "min":
			problems[field] = append(problems[field], "Value is too short, min: "+fe.Param())
		case "max":
			problems[field] = append(problems[field], "Value is too long, max: "+fe.Param())
		case "maxbytes":
			problems[field] = append(problems[field], "Value is too long, max bytes: "+fe.Param())
		case "hasupper":
			problems[field] = append(problems[field], "Value must have at least one uppercase character")
		case "haslower":
			problems[field] = append(problems[field], "Value must have at least one lowercase character")
		case "hasdigit":
			problems[field] = append(problems[field], "Value must have at least one number")
		case "hasspecial":
			problems[field] = append(problems[field], "Value must have at least one special character")
		case "nospaces":
			problems[field] = append(problems[field], "Value must not contain whitespace")
		case "email":
			problems[field] = append(problems[field], "Value must be a valid email address")
		case "numeric":
			problems[field] = append(problems[field], "Value must be a numeric id")

		default:
			problems[field] = append(problems[field], "Invalid value provided")
		}
	}

	return &StructuredError{
		Errors: problems,
		Status: http.StatusBadRequest,
	}
}

// New builds an APIError of the given kind.
func New(kind Kind, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Kind: kind, Message: msg}
}

func NewWithStatus(kind Kind, status int, msg string, args ...any) *APIError {
	e := New(kind, msg, args...)
	e.Status = status
	return e
}

func NewStructured(code int) *StructuredError {
	return &StructuredError{
		Errors: make(map[string][]string),
		Status: code,
	}
}

func NewMissingParamError(name string) *APIError {
	return New(KindValidation, "Missing required parameter '%s'", name)
}

func NewInvalidParamTypeError(name, dataType string) *APIError {
	return New(KindValidation, "Parameter '%s' has invalid type, expected: %s", name, dataType)
}

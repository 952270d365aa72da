// Package apierr turns service failures into what a client is allowed to see:
// an HTTP status, a gRPC code and a fixed message. Unrecognised errors become
// a 500 whose message never carries the underlying cause.
package apierr

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/skyauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client-visible messages.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgUserExists         = "User already exists"
	MsgTokenExpired       = "Token expired"
	MsgInvalidToken       = "Invalid token"
	MsgNoToken            = "No token provided"
	MsgUserNotFound       = "User not found"
	MsgPermissionDenied   = "Permission denied"
	MsgMethodNotAllowed   = "Method not allowed"
	MsgInternal           = "Internal server error"
)

// Error is the transport-neutral form of a failure.
type Error struct {
	HTTPStatus int
	Code       codes.Code
	Message    string
}

// Body is the JSON error payload.
type Body struct {
	Error string `json:"error"`
}

// Internal reports whether e is the catch-all mapping, i.e. the cause should
// be logged by the caller.
func (e Error) Internal() bool { return e.HTTPStatus == http.StatusInternalServerError }

// GRPC returns e as a gRPC status error.
func (e Error) GRPC() error { return status.Error(e.Code, e.Message) }

// From maps err onto the failure taxonomy. err must be non-nil.
func From(err error) Error {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return Error{http.StatusUnauthorized, codes.Unauthenticated, MsgInvalidCredentials}
	case errors.Is(err, common.ErrDuplicateEmail):
		return Error{http.StatusBadRequest, codes.AlreadyExists, MsgUserExists}
	case errors.Is(err, common.ErrValidation):
		// validation messages are built from our own rules and never echo
		// input values
		return Error{http.StatusBadRequest, codes.InvalidArgument, err.Error()}
	case errors.Is(err, common.ErrNoToken):
		return Error{http.StatusUnauthorized, codes.Unauthenticated, MsgNoToken}
	case errors.Is(err, common.ErrTokenExpired):
		return Error{http.StatusUnauthorized, codes.Unauthenticated, MsgTokenExpired}
	case common.IsTokenInvalid(err):
		return Error{http.StatusUnauthorized, codes.Unauthenticated, MsgInvalidToken}
	case errors.Is(err, common.ErrorNotFound):
		return Error{http.StatusNotFound, codes.NotFound, MsgUserNotFound}
	case errors.Is(err, common.ErrPermissionDenied):
		return Error{http.StatusForbidden, codes.PermissionDenied, MsgPermissionDenied}
	case errors.Is(err, common.ErrMethodNotAllowed):
		return Error{http.StatusMethodNotAllowed, codes.Unimplemented, MsgMethodNotAllowed}
	default:
		return Error{http.StatusInternalServerError, codes.Internal, MsgInternal}
	}
}

package wcs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrCoverageNotFound    = errors.New("coverage not found")
	ErrMissingGridMetadata = errors.New("coverage has no grid reader")
	ErrUnsupportedGrid     = errors.New("only two dimensional grids are supported")
)

// Code is an OWS exception code.
type Code string

const (
	CodeNoApplicableCode      Code = "NoApplicableCode"
	CodeNoSuchCoverage        Code = "NoSuchCoverage"
	CodeMissingParameterValue Code = "MissingParameterValue"
	CodeInvalidParameterValue Code = "InvalidParameterValue"
	CodeOperationNotSupported Code = "OperationNotSupported"
)

type ServiceError struct {
	Code    Code
	Locator string
	Err     error
}

func NewServiceError(code Code, locator string, err error) *ServiceError {
	return &ServiceError{Code: code, Locator: locator, Err: err}
}

func (e *ServiceError) Error() string {
	if e.Locator != "" {
		return fmt.Sprintf("%s (%s): %v", e.Code, e.Locator, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) HTTPStatus() int {
	switch e.Code {
	case CodeNoSuchCoverage:
		return http.StatusNotFound
	case CodeMissingParameterValue, CodeInvalidParameterValue, CodeOperationNotSupported:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// AsServiceError returns err as a *ServiceError, wrapping it as
// NoApplicableCode when it is not one already.
func AsServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return NewServiceError(CodeNoApplicableCode, "", err)
}

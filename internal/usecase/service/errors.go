package service

import (
	"fmt"

	"github.com/google/uuid"
)

type DomainError struct {
	Code    string
	Message string
	Err     error
}

func WrapError(domainError *DomainError, err error) error {
	return &DomainError{
		Code:    domainError.Code,
		Message: domainError.Message,
		Err:     err,
	}
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

var (
	// NOT_FOUND
	ErrApplicationNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "application not found",
	}
	ErrReviewNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "field review not found",
	}
	ErrInterviewNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "interview not found",
	}

	// INVALID_STATE
	ErrInvalidState = &DomainError{
		Code:    "INVALID_STATE",
		Message: "illegal application lifecycle transition",
	}

	// DUPLICATE_ASSIGNMENT
	ErrDuplicateAssignment = &DomainError{
		Code:    "DUPLICATE_ASSIGNMENT",
		Message: "officer already holds a field review for this application and task type",
	}

	// CONFLICT
	ErrConflict = &DomainError{
		Code:    "CONFLICT",
		Message: "interview already exists for this application",
	}

	// INVALID_REFERENCE
	ErrInvalidReference = &DomainError{
		Code:    "INVALID_REFERENCE",
		Message: "referenced id is unknown or inactive",
	}

	// INVALID_INPUT
	ErrInvalidInput = &DomainError{
		Code:    "INVALID_INPUT",
		Message: "invalid input",
	}

	// FORBIDDEN
	ErrForbidden = &DomainError{
		Code:    "FORBIDDEN",
		Message: "actor is not entitled to act on this entity",
	}
)

// normalizeID проверяет, что идентификатор является корректным uuid
func normalizeID(id, field string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%s is not a valid id: %q", field, id)
	}
	return parsed.String(), nil
}

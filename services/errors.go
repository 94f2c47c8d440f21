package services

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden: insufficient permissions")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRoleMismatch       = errors.New("account is not registered for this role")
	ErrValidation         = errors.New("validation failed")
	ErrHospitalExists     = errors.New("hospital already registered for this admin")
	ErrStorage            = errors.New("storage failure")

	// ErrInvalidTransition and ErrSlotUnavailable are validation failures.
	ErrInvalidTransition = &ValidationError{Fields: map[string]string{"status": "transition not allowed"}}
	ErrSlotUnavailable   = &ValidationError{Fields: map[string]string{"appointment_time": "slot is not available"}}
)

// ValidationError carries per-field messages. errors.Is(err, ErrValidation)
// holds for every ValidationError.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// fromOzzo converts ozzo validation output into a ValidationError. Internal
// rule errors are returned unchanged.
func fromOzzo(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		fields := make(map[string]string, len(errs))
		for k, v := range errs {
			if v != nil {
				fields[k] = v.Error()
			}
		}
		return &ValidationError{Fields: fields}
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	return &ValidationError{Fields: map[string]string{"input": err.Error()}}
}

// storageErr marks a repository failure so the transport maps it to a 500.
func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation error")
	ErrGateway      = errors.New("payment gateway error")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrUnavailable  = errors.New("service unavailable")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
	pqInvalidText         = "22P02"
)

// storageError maps driver errors onto the service error taxonomy. Anything
// it does not recognise is returned wrapped as is.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrConflict, pqErr.Constraint)
		case pqCheckViolation, pqForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrValidation, pqErr.Message)
		case pqInvalidText:
			return fmt.Errorf("%s: %w: %s", op, ErrInvalidInput, pqErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

package domain

import "errors"

var (
	// Card errors
	ErrCardNotFound        = errors.New("card not found")
	ErrCardNotEligible     = errors.New("card is not active")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Transfer errors
	ErrTransferNotFound = errors.New("transfer not found")
	ErrSameCard         = errors.New("cannot transfer to same card")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidState     = errors.New("transfer state does not allow this transition")
	ErrExecution        = errors.New("transfer execution failed")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already registered")

	// Authorization errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

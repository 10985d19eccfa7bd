package store

import "errors"

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

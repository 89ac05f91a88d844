package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned by cart mutations before the persisted cart is loaded.
	ErrNotReady = errors.New("cart is still loading")
	// ErrNotSignedIn is returned by operations that need a session.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrEmptyCart is returned by checkout of an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// AuthErrorKind classifies identity provider rejections.
type AuthErrorKind int

const (
	InvalidCredentials AuthErrorKind = iota
	EmailExists
	EmailNotFound
	SignInFailed
	SignUpFailed
	ResetFailed
)

func (k AuthErrorKind) String() string {
	switch k {
	case InvalidCredentials:
		return "invalid email or password"
	case EmailExists:
		return "email is already registered"
	case EmailNotFound:
		return "no account uses this email"
	case SignInFailed:
		return "sign-in failed"
	case SignUpFailed:
		return "sign-up failed"
	case ResetFailed:
		return "password reset failed"
	}
	return fmt.Sprintf("AuthErrorKind(%d)", int(k))
}

// AuthError is a credentials rejection normalized from the provider's code.
type AuthError struct {
	Kind AuthErrorKind
	// Code is the provider's raw error code, e.g. "INVALID_PASSWORD".
	Code string
}

func (e *AuthError) Error() string {
	if e.Code == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s (%s)", e.Kind, e.Code)
}

// CapacityError rejects a cart quantity above the product's stock.
type CapacityError struct {
	ProductID string
	Name      string
	Stock     int64
	Requested int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough stock for %s: max %d, requested %d", e.Name, e.Stock, e.Requested)
}

// Package common defines shared constants and sentinel errors used across
// client and server layers of SnapNote. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Note store errors.
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrInvalidNote       = errors.New("invalid note")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrLeaseLost is returned when another process took over the sync run
	// lease while a run was still uploading.
	ErrLeaseLost = errors.New("sync lease lost")

	// Subscription registry errors.
	ErrInvalidSubscription = errors.New("invalid subscription")

	// Transport errors. A transfer failure leaves the note pending,
	// a delivery failure prunes one push endpoint.
	ErrTransferFailure = errors.New("transfer failure")
	ErrDeliveryFailure = errors.New("delivery failure")

	// ErrMissingCredentials is returned when push delivery is requested
	// but no VAPID key pair is configured.
	ErrMissingCredentials = errors.New("missing push credentials")
)

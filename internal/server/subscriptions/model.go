// Package subscriptions stores push subscriptions in a JSON file that is
// rewritten atomically on every change.
package subscriptions

import (
	"fmt"

	"github.com/dmitrijs2005/snapnote/internal/common"
)

// Keys are the client's encryption keys of a push subscription.
type Keys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is a browser PushSubscription in its JSON form. Endpoint is
// the identity of the subscription.
type Subscription struct {
	Endpoint       string `json:"endpoint"`
	ExpirationTime *int64 `json:"expirationTime"`
	Keys           Keys   `json:"keys"`
}

// Validate reports ErrInvalidSubscription for a subscription without endpoint.
func (s *Subscription) Validate() error {
	if s == nil || s.Endpoint == "" {
		return fmt.Errorf("%w: missing endpoint", common.ErrInvalidSubscription)
	}
	return nil
}

package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/dmitrijs2005/snapnote/internal/common"
	"github.com/dmitrijs2005/snapnote/internal/netx"
	"github.com/dmitrijs2005/snapnote/internal/server/subscriptions"
)

// WebPushOptions configures the VAPID signed Web Push transport. Subject is
// either a mailto: address or an https: URL; webpush-go adds the mailto:
// scheme itself, so it is stripped here.
type WebPushOptions struct {
	PublicKey  string
	PrivateKey string
	Subject    string
	TTL        time.Duration
	HTTPClient *http.Client
}

// WebPusher delivers messages through the subscription's push service.
type WebPusher struct {
	opts WebPushOptions
}

var _ Pusher = (*WebPusher)(nil)

// NewWebPusher returns ErrMissingCredentials unless both VAPID keys are set.
func NewWebPusher(opts WebPushOptions) (*WebPusher, error) {
	if opts.PublicKey == "" || opts.PrivateKey == "" {
		return nil, common.ErrMissingCredentials
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &WebPusher{opts: opts}, nil
}

// Push sends payload and treats any non-2xx answer of the push service as
// a rejection.
func (p *WebPusher) Push(ctx context.Context, sub subscriptions.Subscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Keys.Auth,
			P256dh: sub.Keys.P256dh,
		},
	}, &webpush.Options{
		HTTPClient:      p.opts.HTTPClient,
		Subscriber:      strings.TrimPrefix(p.opts.Subject, "mailto:"),
		VAPIDPublicKey:  p.opts.PublicKey,
		VAPIDPrivateKey: p.opts.PrivateKey,
		TTL:             int(p.opts.TTL.Seconds()),
	})
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return netx.CheckResponse(resp)
}

// GenerateKeys creates a VAPID key pair, base64url encoded, as used by
// WebPushOptions and by browsers subscribing with the public key.
func GenerateKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	return publicKey, privateKey, err
}

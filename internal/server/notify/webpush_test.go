package notify

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/snapnote/internal/common"
	"github.com/dmitrijs2005/snapnote/internal/netx"
	"github.com/dmitrijs2005/snapnote/internal/server/subscriptions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubscription(t *testing.T, endpoint string) subscriptions.Subscription {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	return subscriptions.Subscription{
		Endpoint: endpoint,
		Keys: subscriptions.Keys{
			P256dh: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(auth),
		},
	}
}

func newTestPusher(t *testing.T) *WebPusher {
	t.Helper()
	pub, priv, err := GenerateKeys()
	require.NoError(t, err)
	require.NotEmpty(t, pub)
	require.NotEmpty(t, priv)

	p, err := NewWebPusher(WebPushOptions{
		PublicKey:  pub,
		PrivateKey: priv,
		Subject:    "mailto:test@example.com",
		TTL:        time.Minute,
	})
	require.NoError(t, err)
	return p
}

func TestNewWebPusher_MissingKeys(t *testing.T) {
	_, err := NewWebPusher(WebPushOptions{PublicKey: "pub"})
	require.ErrorIs(t, err, common.ErrMissingCredentials)

	_, err = NewWebPusher(WebPushOptions{PrivateKey: "priv"})
	require.ErrorIs(t, err, common.ErrMissingCredentials)
}

func TestWebPusher_Push(t *testing.T) {
	var gotAuth, gotTTL, gotEncoding string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTTL = r.Header.Get("TTL")
		gotEncoding = r.Header.Get("Content-Encoding")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p := newTestPusher(t)
	err := p.Push(context.Background(), newTestSubscription(t, srv.URL+"/push/abc"), []byte(`{"title":"SnapNote"}`))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotAuth, "vapid t="), gotAuth)
	assert.Equal(t, "60", gotTTL)
	assert.Equal(t, "aes128gcm", gotEncoding)
	assert.NotEmpty(t, gotBody)
	assert.NotContains(t, string(gotBody), "SnapNote", "payload must be encrypted")
}

func TestWebPusher_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "subscription expired", http.StatusGone)
	}))
	defer srv.Close()

	p := newTestPusher(t)
	err := p.Push(context.Background(), newTestSubscription(t, srv.URL), []byte("{}"))
	require.Error(t, err)

	var se *netx.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusGone, se.StatusCode)
}

func TestWebPusher_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := newTestPusher(t)
	err := p.Push(context.Background(), newTestSubscription(t, url), []byte("{}"))
	require.Error(t, err)
}

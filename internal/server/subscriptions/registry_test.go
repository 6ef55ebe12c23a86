package subscriptions

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/snapnote/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sub(endpoint, auth string) Subscription {
	return Subscription{Endpoint: endpoint, Keys: Keys{P256dh: "p-" + auth, Auth: auth}}
}

func endpoints(subs []Subscription) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.Endpoint)
	}
	return out
}

func TestLoad_MissingFile(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "subs.json"))
	require.NoError(t, err)

	all, err := r.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	exp := int64(1700000000000)
	content := `[{"endpoint":"https://push.example/a","expirationTime":1700000000000,"keys":{"p256dh":"pk","auth":"ak"}},
	             {"endpoint":"https://push.example/b","expirationTime":null,"keys":{"p256dh":"pk2","auth":"ak2"}}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r, err := Load(path)
	require.NoError(t, err)

	all, err := r.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, Subscription{Endpoint: "https://push.example/a", ExpirationTime: &exp, Keys: Keys{P256dh: "pk", Auth: "ak"}}, all[0])
	assert.Nil(t, all[1].ExpirationTime)
}

func TestUpsert_ReplacesByEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "subs.json")
	r, err := Load(path)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sub("e1", "old")))
	require.NoError(t, r.Upsert(ctx, sub("e2", "x")))
	require.NoError(t, r.Upsert(ctx, sub("e1", "new")))

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e2", "e1"}, endpoints(all))
	assert.Equal(t, "new", all[1].Keys.Auth)

	// persisted before returning
	reloaded, err := Load(path)
	require.NoError(t, err)
	again, err := reloaded.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, all, again)
}

func TestUpsert_RejectsEmptyEndpoint(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "subs.json"))
	require.NoError(t, err)

	err = r.Upsert(context.Background(), Subscription{})
	require.ErrorIs(t, err, common.ErrInvalidSubscription)
}

func TestRemoveAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	r, err := Load(path)
	require.NoError(t, err)
	ctx := context.Background()

	for _, e := range []string{"e1", "e2", "e3"} {
		require.NoError(t, r.Upsert(ctx, sub(e, e)))
	}

	n, err := r.RemoveAll(ctx, []string{"e1", "e3", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e2"}, endpoints(all))

	var onDisk []Subscription
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, []string{"e2"}, endpoints(onDisk))
}

func TestRemoveAll_NoChangeDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	r, err := Load(path)
	require.NoError(t, err)

	n, err := r.RemoveAll(context.Background(), []string{"nope"})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "registry file must not be created when nothing changed")
}

func TestUpsert_WriteFailureRollsBack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	r, err := Load(filepath.Join(dir, "subs.json"))
	require.NoError(t, err)

	// a regular file in place of the directory makes every write fail
	require.NoError(t, os.WriteFile(dir, nil, 0o600))

	err = r.Upsert(context.Background(), sub("e1", "a"))
	require.Error(t, err)

	all, err := r.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListAll_ReturnsCopy(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "subs.json"))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, r.Upsert(ctx, sub("e1", "a")))

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	all[0].Endpoint = "mutated"

	again, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "e1", again[0].Endpoint)
}

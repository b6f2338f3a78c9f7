package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly/store"
)

type fakeSettingStore struct {
	settings map[string]string
}

func (f *fakeSettingStore) GetSystemSetting(_ context.Context, find *store.FindSystemSetting) (*store.SystemSetting, error) {
	value, ok := f.settings[find.Name]
	if !ok {
		return nil, nil
	}
	return &store.SystemSetting{Name: find.Name, Value: value}, nil
}

func (f *fakeSettingStore) UpsertSystemSetting(_ context.Context, upsert *store.SystemSetting) (*store.SystemSetting, error) {
	f.settings[upsert.Name] = upsert.Value
	return upsert, nil
}

func TestInstanceSecretPersistsAcrossStarts(t *testing.T) {
	ctx := context.Background()
	settings := &fakeSettingStore{settings: map[string]string{}}

	first, err := instanceSecret(ctx, settings)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// A later start reads the same secret back instead of minting a new
	// one, so issued tokens stay valid.
	second, err := instanceSecret(ctx, settings)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInstanceSecretReusesExisting(t *testing.T) {
	ctx := context.Background()
	settings := &fakeSettingStore{settings: map[string]string{
		secretSettingName: "pre-seeded",
	}}

	secret, err := instanceSecret(ctx, settings)
	require.NoError(t, err)
	assert.Equal(t, "pre-seeded", secret)
}

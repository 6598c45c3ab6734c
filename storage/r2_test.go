package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinPublicURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		key  string
		want string
	}{
		{"host only", "https://cdn.test", "telemetry/a.json", "https://cdn.test/telemetry/a.json"},
		{"trailing slash", "https://cdn.test/", "telemetry/a.json", "https://cdn.test/telemetry/a.json"},
		{"leading slash key", "https://cdn.test/", "/telemetry/a.json", "https://cdn.test/telemetry/a.json"},
		{"base with path", "https://cdn.test/bucket", "telemetry/a.json", "https://cdn.test/bucket/telemetry/a.json"},
		{"empty base", "", "telemetry/a.json", ""},
		{"empty key", "https://cdn.test", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinPublicURL(tt.base, tt.key))
		})
	}
}

func TestNewR2StoreRequiresAllFields(t *testing.T) {
	_, err := NewR2Store(context.Background(), R2Config{AccountID: "acc", BucketName: "b"})
	assert.Error(t, err)
}

func TestDisabledStore(t *testing.T) {
	var store ObjectStore = Disabled{}

	_, err := store.Put(context.Background(), "k", "application/json", strings.NewReader("{}"))
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, store.Delete(context.Background(), "k"), ErrNotConfigured)
	assert.Empty(t, store.PublicURL("k"))
}

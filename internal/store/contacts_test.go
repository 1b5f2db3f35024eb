package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestContactAddAndGet(t *testing.T) {
	s := NewContactStore(newTestKV(t))

	_, err := s.Add("Matthew", "+1 555 0100", "")
	require.NoError(t, err)

	rec, found, err := s.Get("matthew")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Matthew", rec.Name)
	assert.Equal(t, "+1 555 0100", rec.Phone)
}

func TestContactCaseFoldedUniqueness(t *testing.T) {
	s := NewContactStore(newTestKV(t))

	_, err := s.Add("Mom", "111", "")
	require.NoError(t, err)
	_, err = s.Add("mom", "222", "mom@example.com")
	require.NoError(t, err)

	all, err := s.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "222", all[0].Phone)
	assert.Equal(t, "mom@example.com", all[0].Email)
}

func TestContactSubstringMatch(t *testing.T) {
	s := NewContactStore(newTestKV(t))

	_, err := s.Add("Dad (work)", "333", "")
	require.NoError(t, err)

	rec, found, err := s.Get("dad")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Dad (work)", rec.Name)

	_, found, err = s.Get("uncle")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestContactUpdateKeepsMissingFields(t *testing.T) {
	s := NewContactStore(newTestKV(t))

	_, err := s.Add("Alice", "444", "alice@example.com")
	require.NoError(t, err)
	_, err = s.Add("Alice", "555", "")
	require.NoError(t, err)

	rec, found, err := s.Get("Alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "555", rec.Phone)
	assert.Equal(t, "alice@example.com", rec.Email)
}

func TestImportFileFormats(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name:    "list format",
			content: `[{"name":"Bob","phone":"100"},{"name":"Carol","phone":"200"}]`,
			want:    2,
		},
		{
			name:    "legacy name map",
			content: `{"bob":{"name":"Bob","phone":"100"},"carol":{"name":"Carol","phone":"200","email":"c@example.com"}}`,
			want:    2,
		},
		{
			name:    "garbage",
			content: `{"not":"contacts"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewContactStore(newTestKV(t))
			path := filepath.Join(t.TempDir(), "contacts.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			n, err := s.ImportFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)

			if tt.name == "legacy name map" {
				rec, found, err := s.Get("carol")
				require.NoError(t, err)
				require.True(t, found)
				assert.Equal(t, "c@example.com", rec.Email)
			}
		})
	}
}

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("  from-file\n"), 0o600))
	t.Setenv("TEST_GEMINI_KEY", "from-env")

	got, err := Load(Source{Name: "gemini api key", Value: "inline", File: path, Env: "TEST_GEMINI_KEY"})
	require.NoError(t, err)
	assert.Equal(t, "from-file", got)
}

func TestLoadFallsBackToValueThenEnv(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", " from-env ")

	got, err := Load(Source{Value: " inline ", Env: "TEST_GEMINI_KEY"})
	require.NoError(t, err)
	assert.Equal(t, "inline", got)

	got, err = Load(Source{Env: "TEST_GEMINI_KEY"})
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}

func TestLoadErrors(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o600))
	t.Setenv("TEST_GEMINI_KEY", "")

	tests := []struct {
		name    string
		src     Source
		message string
	}{
		{name: "missing file", src: Source{Name: "key", File: filepath.Join(t.TempDir(), "nope")}, message: `reading key from file`},
		{name: "empty file", src: Source{Name: "key", File: empty}, message: `key file "` + empty + `" is empty`},
		{name: "empty env", src: Source{Name: "key", Env: "TEST_GEMINI_KEY"}, message: "key is not configured (checked TEST_GEMINI_KEY)"},
		{name: "nothing set", src: Source{}, message: "secret is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	InitValidator()

	t.Run("valid environment", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("TOKEN_SYMMETRIC_KEY", "01234567890123456789012345678901")
		t.Setenv("CORS_ORIGINS", "http://localhost:3000, http://localhost:3001")

		config, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, "8080", config.Port)
		require.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, config.CORSOrigins)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("TOKEN_SYMMETRIC_KEY", "")

		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("short key", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("TOKEN_SYMMETRIC_KEY", "short")

		_, err := LoadConfig()
		require.Error(t, err)
	})
}

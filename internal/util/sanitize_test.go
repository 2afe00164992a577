package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	t.Run("replaces invalid characters", func(t *testing.T) {
		actual, err := SanitizeFilename(` report<2026>?.pdf `, false)
		require.NoError(t, err)
		require.Equal(t, "report_2026__.pdf", actual)
	})

	t.Run("rejects empty filenames", func(t *testing.T) {
		_, err := SanitizeFilename("   ", false)
		require.Error(t, err)
	})

	t.Run("rejects null bytes", func(t *testing.T) {
		_, err := SanitizeFilename("a\x00b.txt", false)
		require.Error(t, err)
	})

	t.Run("rejects hidden filenames when disabled", func(t *testing.T) {
		_, err := SanitizeFilename(".env", false)
		require.Error(t, err)
	})

	t.Run("allows hidden filenames when enabled", func(t *testing.T) {
		actual, err := SanitizeFilename(".env", true)
		require.NoError(t, err)
		require.Equal(t, ".env", actual)
	})

	t.Run("rejects windows reserved names", func(t *testing.T) {
		for _, name := range []string{"CON.txt", "con", "LPT1.log"} {
			_, err := SanitizeFilename(name, false)
			require.Error(t, err, "name %q should be rejected", name)
		}
	})

	t.Run("truncates long filenames by runes", func(t *testing.T) {
		actual, err := SanitizeFilename(strings.Repeat("ä", 300), false)
		require.NoError(t, err)
		require.Len(t, []rune(actual), 255)
	})

	t.Run("strips zero-width characters", func(t *testing.T) {
		actual, err := SanitizeFilename("Call​ of​ Duty​ screenshot.png", false)
		require.NoError(t, err)
		require.Equal(t, "Call of Duty screenshot.png", actual)
	})

	t.Run("rejects dot and dot-dot", func(t *testing.T) {
		for _, name := range []string{".", ".."} {
			_, err := SanitizeFilename(name, true)
			require.Error(t, err)
		}
	})
}

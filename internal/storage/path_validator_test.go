package storage

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"homeshare/pkg/apierror"
)

func requireAPIErrorCode(t *testing.T, err error, code string, status int) {
	t.Helper()

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, code, apiErr.Code)
	require.Equal(t, status, apiErr.HTTPStatus)
}

func TestPathValidatorResolvePath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	validator, err := NewPathValidator(root)
	require.NoError(t, err)

	t.Run("empty and slash resolve to the root", func(t *testing.T) {
		for _, input := range []string{"", "/", "  ", "."} {
			resolved, resolveErr := validator.ResolvePath(input)
			require.NoError(t, resolveErr)
			require.Equal(t, validator.RootAbs(), resolved)
		}
	})

	t.Run("nested path stays inside the root", func(t *testing.T) {
		resolved, resolveErr := validator.ResolvePath("docs/report.pdf")
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(validator.RootAbs(), "docs", "report.pdf"), resolved)
	})

	t.Run("leading slash is relative to the root", func(t *testing.T) {
		resolved, resolveErr := validator.ResolvePath("/docs")
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(validator.RootAbs(), "docs"), resolved)
	})

	t.Run("backslashes are treated as separators", func(t *testing.T) {
		resolved, resolveErr := validator.ResolvePath(`docs\nested\file.txt`)
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(validator.RootAbs(), "docs", "nested", "file.txt"), resolved)
	})

	t.Run("dot-dot segments are rejected", func(t *testing.T) {
		for _, input := range []string{"..", "../etc/passwd", "docs/../../escape", `docs\..\..\escape`} {
			_, resolveErr := validator.ResolvePath(input)
			requireAPIErrorCode(t, resolveErr, "PATH_TRAVERSAL", http.StatusForbidden)
		}
	})

	t.Run("control characters are rejected", func(t *testing.T) {
		for _, input := range []string{"docs/\x00evil", "docs/\nfile", "docs/\tfile"} {
			_, resolveErr := validator.ResolvePath(input)
			requireAPIErrorCode(t, resolveErr, "INVALID_PATH", http.StatusBadRequest)
		}
	})
}

func TestPathValidatorRejectsEmptyRoot(t *testing.T) {
	t.Parallel()

	_, err := NewPathValidator("  ")
	require.Error(t, err)
}

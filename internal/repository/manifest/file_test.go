package manifest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/client-release/internal/domain/build"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), ".manifest"))

	m, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, m)
}

// TestFileRepository_SaveLoad writes the manifest and checks the wire field names.
func TestFileRepository_SaveLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".manifest")
	repo := NewFileRepository(path)

	want := &build.Manifest{
		Version: build.ManifestSchemaVersion,
		AutoRun: true,
		GameInfo: build.GameInfo{
			Dir:          "data-376715-739828",
			UID:          "376715-739828",
			ArchiveFiles: []string{"./a", "./b"},
			PlatformURL:  "https://gamingchannel.com/x/updater/check-for-updates",
			DeclaredImplementations: build.DeclaredImplementations{
				Presence:          true,
				BadUpdateRecovery: true,
			},
		},
		LaunchOptions: build.LaunchOptions{Executable: "gaming-channel-client"},
		OS:            "linux",
		Arch:          "64",
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	require.Equal(t, float64(2), wire["version"])
	require.Equal(t, false, wire["isFirstInstall"])
	require.Contains(t, wire, "launchOptions")

	gameInfo, ok := wire["gameInfo"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, gameInfo, "platformUrl")
	require.Contains(t, gameInfo, "declaredImplementations")
}

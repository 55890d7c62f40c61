package display

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/regmsg/internal/regerr"
)

func testDRMBackend(t *testing.T) *drmBackend {
	t.Helper()
	return &drmBackend{modeFile: filepath.Join(t.TempDir(), "drmMode")}
}

func testDRMOutputs() []Output {
	return []Output{
		{
			Name:      "HDMI-A-1",
			Connected: true,
			Modes: []Mode{
				{Width: 1920, Height: 1080, Refresh: 60, Name: "1920x1080@60Hz"},
				{Width: 1280, Height: 720, Refresh: 60, Name: "1280x720@60Hz"},
			},
		},
	}
}

func TestDRMApplyModeWritesModeFile(t *testing.T) {
	backend := testDRMBackend(t)

	err := backend.applyMode(testDRMOutputs(), "", ModeParams{Width: 1920, Height: 1080, Refresh: 60})
	require.NoError(t, err)

	data, err := os.ReadFile(backend.modeFile)
	require.NoError(t, err)
	assert.Equal(t, "1920x1080@60", string(data))
}

func TestDRMApplyModeUnadvertisedWithoutFilter(t *testing.T) {
	backend := testDRMBackend(t)

	// No screen filter: unavailable modes are skipped, not errored.
	err := backend.applyMode(testDRMOutputs(), "", ModeParams{Width: 2560, Height: 1440, Refresh: 144})
	require.NoError(t, err)

	_, err = os.Stat(backend.modeFile)
	assert.True(t, os.IsNotExist(err))
}

func TestDRMApplyModeUnadvertisedWithFilter(t *testing.T) {
	backend := testDRMBackend(t)

	err := backend.applyMode(testDRMOutputs(), "HDMI-A-1", ModeParams{Width: 2560, Height: 1440, Refresh: 144})
	var backendErr *regerr.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "DRM", backendErr.Backend)
	assert.Equal(t, "Backend error DRM: mode 2560x1440@144 not available on any connected output", err.Error())

	_, statErr := os.Stat(backend.modeFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConnectorTypeNames(t *testing.T) {
	assert.Equal(t, "HDMI-A", drmConnectorTypeNames[11])
	assert.Equal(t, "DP", drmConnectorTypeNames[10])
	assert.Equal(t, "eDP", drmConnectorTypeNames[14])
}

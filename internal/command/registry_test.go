package command

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/regmsg/internal/config"
	"github.com/bnema/regmsg/internal/controller"
	"github.com/bnema/regmsg/internal/display"
	"github.com/bnema/regmsg/internal/regerr"
	"github.com/bnema/regmsg/internal/screen"
)

// stubBackend always succeeds with fixed display state.
type stubBackend struct {
	rotations []int
}

func (b *stubBackend) Name() string { return "Stub" }

func (b *stubBackend) ListOutputs() ([]display.Output, error) {
	mode := &display.Mode{Width: 1920, Height: 1080, Refresh: 60, Name: "1920x1080@60Hz"}
	return []display.Output{{Name: "HDMI-A-1", Connected: true, CurrentMode: mode}}, nil
}

func (b *stubBackend) ListModes(screen string) ([]display.Mode, error) {
	return []display.Mode{{Width: 1920, Height: 1080, Refresh: 60, Name: "1920x1080@60Hz"}}, nil
}

func (b *stubBackend) CurrentMode(screen string) (*display.Mode, error) {
	return &display.Mode{Width: 1920, Height: 1080, Refresh: 60, Name: "1920x1080@60Hz"}, nil
}

func (b *stubBackend) CurrentResolution(screen string) (uint32, uint32, error) {
	return 1920, 1080, nil
}

func (b *stubBackend) CurrentRefreshRate(screen string) (uint32, error) { return 60, nil }

func (b *stubBackend) CurrentRotation(screen string) (int, error) { return 0, nil }

func (b *stubBackend) SetMode(screen string, params display.ModeParams) error { return nil }

func (b *stubBackend) SetRotation(screen string, degrees int) error {
	b.rotations = append(b.rotations, degrees)
	return nil
}

func (b *stubBackend) SetMaxResolution(screen string, maxRes string) error { return nil }

func (b *stubBackend) TakeScreenshot(dir string) (string, error) {
	return dir + "/screenshot-test.png", nil
}

func (b *stubBackend) MapTouchscreen() error { return nil }

func testRegistry(t *testing.T) (*Registry, *stubBackend) {
	t.Helper()
	backend := &stubBackend{}
	cfg := config.DefaultConfig
	svc := screen.NewService(backend, &cfg)
	return InitCommands(svc, controller.NewStore(nil)), backend
}

func TestHandleEmptyCommand(t *testing.T) {
	registry, _ := testRegistry(t)

	for _, line := range []string{"", "   ", "\t"} {
		_, err := registry.Handle(line)
		require.ErrorIs(t, err, ErrEmptyCommand)
		assert.Equal(t, "Empty command", err.Error())
	}
}

func TestHandleUnknownCommand(t *testing.T) {
	registry, _ := testRegistry(t)

	_, err := registry.Handle("unknownCmd")
	var unknown *UnknownCommandError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Unknown command: unknownCmd", err.Error())
}

func TestHandleArityMismatch(t *testing.T) {
	registry := NewRegistry()
	called := false
	registry.Register("probe", &ArgHandler{
		Name: "probe",
		Desc: "test probe",
		N:    2,
		Fn: func(args []string) error {
			called = true
			return nil
		},
	})

	_, err := registry.Handle("probe onlyone")
	var invalidArgs *regerr.InvalidArgumentsError
	require.ErrorAs(t, err, &invalidArgs)
	assert.Equal(t, "Invalid arguments: probe expects 2 arguments, got 1", err.Error())
	// The handler must not run on an arity mismatch.
	assert.False(t, called)

	reply, err := registry.Handle("probe a b")
	require.NoError(t, err)
	assert.Equal(t, "probe executed successfully", reply)
	assert.True(t, called)
}

func TestRegisterOverwrites(t *testing.T) {
	registry := NewRegistry()
	registry.Register("cmd", &SimpleHandler{Desc: "first", Fn: func() (string, error) { return "one", nil }})
	registry.Register("cmd", &SimpleHandler{Desc: "second", Fn: func() (string, error) { return "two", nil }})

	reply, err := registry.Handle("cmd")
	require.NoError(t, err)
	assert.Equal(t, "two", reply)
	assert.Equal(t, "cmd: second", registry.ListCommands())
}

func TestListCommandsSorted(t *testing.T) {
	registry, _ := testRegistry(t)

	listing := registry.ListCommands()
	lines := strings.Split(listing, "\n")
	require.Greater(t, len(lines), 10)
	assert.True(t, sortedLines(lines))
	assert.Contains(t, listing, "listCommands: List all available commands")
	assert.Contains(t, listing, "setRotation: Sets the screen rotation for the specified screen (0, 90, 180, 270)")
	assert.Contains(t, listing, "currentRotation")
	assert.Contains(t, listing, "addController")
}

func sortedLines(lines []string) bool {
	for i := 1; i < len(lines); i++ {
		if lines[i-1] > lines[i] {
			return false
		}
	}
	return true
}

func TestListCommandsViaHandle(t *testing.T) {
	registry, _ := testRegistry(t)

	reply, err := registry.Handle("listCommands")
	require.NoError(t, err)
	assert.Equal(t, registry.ListCommands(), reply)
}

func TestScreenSetterHandler(t *testing.T) {
	t.Run("missing value", func(t *testing.T) {
		registry, _ := testRegistry(t)
		_, err := registry.Handle("setRotation")
		require.Error(t, err)
		assert.Equal(t, "Invalid arguments: Missing required argument", err.Error())
	})

	t.Run("value only", func(t *testing.T) {
		registry, backend := testRegistry(t)
		reply, err := registry.Handle("setRotation 90")
		require.NoError(t, err)
		assert.Equal(t, "Set to 90", reply)
		assert.Equal(t, []int{90}, backend.rotations)
	})

	t.Run("value with screen flag pair", func(t *testing.T) {
		registry, backend := testRegistry(t)
		reply, err := registry.Handle("setRotation 180 --screen HDMI-A-1")
		require.NoError(t, err)
		assert.Equal(t, "Set to 180", reply)
		assert.Equal(t, []int{180}, backend.rotations)
	})

	t.Run("invalid value wrapped as execution error", func(t *testing.T) {
		registry, backend := testRegistry(t)
		_, err := registry.Handle("setRotation 45")
		var execErr *ExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, "Execution error: Invalid arguments: Rotation must be one of: 0, 90, 180, 270", err.Error())
		assert.Empty(t, backend.rotations)

		var invalidArgs *regerr.InvalidArgumentsError
		assert.True(t, errors.As(err, &invalidArgs))
	})
}

func TestScreenHandlerQueries(t *testing.T) {
	registry, _ := testRegistry(t)

	tests := []struct {
		line string
		want string
	}{
		{line: "currentMode", want: "1920x1080@60"},
		{line: "currentMode HDMI-A-1", want: "1920x1080@60"},
		{line: "currentMode --screen HDMI-A-1", want: "1920x1080@60"},
		{line: "currentResolution", want: "1920x1080"},
		{line: "currentRefresh", want: "60Hz"},
		{line: "currentRotation", want: "0"},
		{line: "currentBackend", want: "Stub"},
		{line: "currentOutput", want: "HDMI-A-1"},
		{line: "listOutputs", want: "HDMI-A-1"},
		{line: "listModes", want: "1920x1080@60:1920x1080@60Hz 1920x1080@60Hz"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			reply, err := registry.Handle(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply)
		})
	}
}

func TestControllerCommands(t *testing.T) {
	registry, _ := testRegistry(t)

	t.Run("getController with empty store", func(t *testing.T) {
		reply, err := registry.Handle("getController")
		require.NoError(t, err)
		assert.Equal(t, "No controllers configured", reply)
	})

	t.Run("addController rejects bad index", func(t *testing.T) {
		_, err := registry.Handle("addController notanumber 030000001234")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid index: notanumber")
	})

	t.Run("addController arity enforced", func(t *testing.T) {
		_, err := registry.Handle("addController 030000001234")
		require.Error(t, err)
		assert.Equal(t, "Invalid arguments: addController expects 2 arguments, got 1", err.Error())
	})

	t.Run("removeController succeeds for unknown guid", func(t *testing.T) {
		reply, err := registry.Handle("removeController 030000001234")
		require.NoError(t, err)
		assert.Equal(t, "removeController executed successfully", reply)
	})
}

package command

import (
	"strconv"
	"strings"

	"github.com/bnema/regmsg/internal/controller"
	"github.com/bnema/regmsg/internal/regerr"
	"github.com/bnema/regmsg/internal/screen"
)

// InitCommands builds the full command table over the given screen
// service and controller store.
func InitCommands(svc *screen.Service, controllers *controller.Store) *Registry {
	registry := NewRegistry()

	registry.Register("listCommands", &SimpleHandler{
		Desc: "List all available commands",
		Fn: func() (string, error) {
			return registry.ListCommands(), nil
		},
	})

	// Screen management commands

	registry.Register("listOutputs", &SimpleHandler{
		Desc: "List all available display outputs",
		Fn:   svc.ListOutputs,
	})

	registry.Register("currentOutput", &SimpleHandler{
		Desc: "Displays the current output (e.g., HDMI, VGA)",
		Fn:   svc.CurrentOutput,
	})

	registry.Register("currentBackend", &SimpleHandler{
		Desc: "Displays the current window system",
		Fn:   svc.CurrentBackend,
	})

	registry.Register("getScreenshot", &SimpleHandler{
		Desc: "Takes a screenshot of the current screen",
		Fn: func() (string, error) {
			if err := svc.TakeScreenshot(); err != nil {
				return "", err
			}
			return "Screenshot taken", nil
		},
	})

	registry.Register("mapTouchScreen", &SimpleHandler{
		Desc: "Maps the touchscreen to the correct display",
		Fn: func() (string, error) {
			if err := svc.MapTouchscreen(); err != nil {
				return "", err
			}
			return "Touchscreen mapped", nil
		},
	})

	registry.Register("listModes", &ScreenHandler{
		Desc: "Lists all available display modes for the specified screen",
		Fn:   svc.ListModes,
	})

	registry.Register("currentMode", &ScreenHandler{
		Desc: "Displays the current display mode for the specified screen",
		Fn:   svc.CurrentMode,
	})

	registry.Register("currentResolution", &ScreenHandler{
		Desc: "Displays the current resolution for the specified screen",
		Fn:   svc.CurrentResolution,
	})

	registry.Register("currentRotation", &ScreenHandler{
		Desc: "Displays the current screen rotation for the specified screen",
		Fn:   svc.CurrentRotation,
	})

	registry.Register("currentRefresh", &ScreenHandler{
		Desc: "Displays the current refresh rate for the specified screen",
		Fn:   svc.CurrentRefresh,
	})

	registry.Register("minToMaxResolution", &ScreenHandler{
		Desc: "Sets the screen resolution to the maximum supported resolution",
		Fn: func(screen string) (string, error) {
			if err := svc.MinToMaxResolution(screen); err != nil {
				return "", err
			}
			return "Resolution set to maximum", nil
		},
	})

	registry.Register("setMode", &ScreenSetterHandler{
		Desc: "Sets the display mode for the specified screen (e.g., 1920x1080@60)",
		Fn: func(screen, mode string) error {
			return svc.SetMode(screen, mode)
		},
	})

	registry.Register("setOutput", &ArgHandler{
		Name: "setOutput",
		Desc: "Sets the output resolution and refresh rate (e.g., WxH@R or WxH)",
		N:    1,
		Fn: func(args []string) error {
			return svc.SetOutput(args[0])
		},
	})

	registry.Register("setRotation", &ScreenSetterHandler{
		Desc: "Sets the screen rotation for the specified screen (0, 90, 180, 270)",
		Fn: func(screen, rotation string) error {
			return svc.SetRotation(screen, rotation)
		},
	})

	// Controller management commands

	registry.Register("addController", &ArgHandler{
		Name: "addController",
		Desc: "Adds controller to the system by index and GUID",
		N:    2,
		Fn: func(args []string) error {
			indexStr := strings.TrimSpace(args[0])
			guid := strings.TrimSpace(args[1])

			index, err := strconv.Atoi(indexStr)
			if err != nil || index < 0 {
				return regerr.InvalidArguments("Invalid index: %s. Index must be a positive integer.", indexStr)
			}
			if guid == "" {
				return regerr.InvalidArguments("GUID cannot be empty.")
			}
			return controllers.Add(index, guid)
		},
	})

	registry.Register("removeController", &ArgHandler{
		Name: "removeController",
		Desc: "Remove controller. Specify 1 GUID to remove a specific controller",
		N:    1,
		Fn: func(args []string) error {
			guid := strings.TrimSpace(args[0])
			if guid == "" {
				return regerr.InvalidArguments("GUID cannot be empty.")
			}
			// Success regardless of whether a controller matched.
			controllers.Remove(guid)
			return nil
		},
	})

	registry.Register("getController", &SimpleHandler{
		Desc: "Get all controller configurations",
		Fn: func() (string, error) {
			controllersJSON, err := controllers.JSON()
			if err != nil {
				return "", err
			}
			if controllersJSON == "{}" {
				return "No controllers configured", nil
			}
			return controllersJSON, nil
		},
	})

	return registry
}

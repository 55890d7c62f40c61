package display

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/regmsg/internal/logger"
	"github.com/bnema/regmsg/internal/regerr"
)

// swayBackend drives a sway compositor through swaymsg. All queries go
// through the raw JSON interface (-r) so the output shape is stable
// across sway versions.
type swayBackend struct {
	socketPath string
}

// NewSwayBackend returns a backend bound to the given sway IPC socket.
func NewSwayBackend(socketPath string) (Backend, error) {
	if _, err := exec.LookPath("swaymsg"); err != nil {
		return nil, fmt.Errorf("swaymsg not found in PATH: %w", err)
	}
	return &swayBackend{socketPath: socketPath}, nil
}

func (s *swayBackend) Name() string { return "Wayland" }

type swayMode struct {
	Width   int `json:"width"`
	Height  int `json:"height"`
	Refresh int `json:"refresh"` // millihertz
}

type swayOutput struct {
	Name        string     `json:"name"`
	Active      bool       `json:"active"`
	Focused     bool       `json:"focused"`
	Transform   string     `json:"transform"`
	Modes       []swayMode `json:"modes"`
	CurrentMode *swayMode  `json:"current_mode"`
}

func (s *swayBackend) swaymsg(args ...string) ([]byte, error) {
	cmd := exec.Command("swaymsg", args...)
	cmd.Env = append(os.Environ(), "SWAYSOCK="+s.socketPath)
	output, err := cmd.Output()
	if err != nil {
		return nil, regerr.Backend("Wayland", "swaymsg %s failed: %v", strings.Join(args, " "), err)
	}
	return output, nil
}

func (s *swayBackend) getOutputs() ([]swayOutput, error) {
	raw, err := s.swaymsg("-t", "get_outputs", "-r")
	if err != nil {
		return nil, err
	}
	var outputs []swayOutput
	if err := json.Unmarshal(raw, &outputs); err != nil {
		return nil, regerr.Backend("Wayland", "failed to parse sway outputs: %v", err)
	}
	return outputs, nil
}

// refreshHz converts sway millihertz to rounded whole hertz.
func refreshHz(mhz int) uint32 {
	return uint32((mhz + 500) / 1000)
}

func transformToDegrees(transform string) int {
	switch transform {
	case "90", "flipped-90", "rotated-90":
		return 90
	case "180", "flipped-180", "rotated-180":
		return 180
	case "270", "flipped-270", "rotated-270":
		return 270
	default:
		return 0
	}
}

func (so *swayOutput) mode() *Mode {
	if so.CurrentMode == nil || so.CurrentMode.Width == 0 {
		return nil
	}
	w := uint32(so.CurrentMode.Width)
	h := uint32(so.CurrentMode.Height)
	r := refreshHz(so.CurrentMode.Refresh)
	return &Mode{Width: w, Height: h, Refresh: r, Name: modeName(w, h, r)}
}

func (so *swayOutput) toOutput() Output {
	out := Output{
		Name:        so.Name,
		Connected:   true,
		Rotation:    transformToDegrees(so.Transform),
		CurrentMode: so.mode(),
	}
	for _, m := range so.Modes {
		w, h, r := uint32(m.Width), uint32(m.Height), refreshHz(m.Refresh)
		out.Modes = append(out.Modes, Mode{Width: w, Height: h, Refresh: r, Name: modeName(w, h, r)})
	}
	return out
}

// selectOutputs filters by screen name. Empty screen means all outputs.
func (s *swayBackend) selectOutputs(screen string) ([]swayOutput, error) {
	outputs, err := s.getOutputs()
	if err != nil {
		return nil, err
	}
	if screen == "" {
		return outputs, nil
	}
	for _, so := range outputs {
		if so.Name == screen {
			return []swayOutput{so}, nil
		}
	}
	return nil, regerr.NotFound("Screen '%s' not found", screen)
}

// focusedOutput returns the focused output, falling back to the first
// active one. Returns nil when nothing is active.
func (s *swayBackend) focusedOutput() (*swayOutput, error) {
	outputs, err := s.getOutputs()
	if err != nil {
		return nil, err
	}
	var firstActive *swayOutput
	for i := range outputs {
		if !outputs[i].Active {
			continue
		}
		if outputs[i].Focused {
			return &outputs[i], nil
		}
		if firstActive == nil {
			firstActive = &outputs[i]
		}
	}
	return firstActive, nil
}

func (s *swayBackend) ListOutputs() ([]Output, error) {
	outputs, err := s.getOutputs()
	if err != nil {
		return nil, err
	}
	result := make([]Output, 0, len(outputs))
	for _, so := range outputs {
		result = append(result, so.toOutput())
	}
	return result, nil
}

func (s *swayBackend) ListModes(screen string) ([]Mode, error) {
	outputs, err := s.selectOutputs(screen)
	if err != nil {
		return nil, err
	}
	var modes []Mode
	for _, so := range outputs {
		for _, m := range so.Modes {
			w, h, r := uint32(m.Width), uint32(m.Height), refreshHz(m.Refresh)
			modes = append(modes, Mode{Width: w, Height: h, Refresh: r, Name: modeName(w, h, r)})
		}
	}
	return modes, nil
}

func (s *swayBackend) CurrentMode(screen string) (*Mode, error) {
	outputs, err := s.selectOutputs(screen)
	if err != nil {
		return nil, err
	}
	for _, so := range outputs {
		if m := so.mode(); m != nil {
			return m, nil
		}
	}
	return nil, regerr.NotFound("Current mode")
}

func (s *swayBackend) CurrentResolution(screen string) (uint32, uint32, error) {
	mode, err := s.CurrentMode(screen)
	if err != nil {
		return 0, 0, err
	}
	return mode.Width, mode.Height, nil
}

func (s *swayBackend) CurrentRefreshRate(screen string) (uint32, error) {
	mode, err := s.CurrentMode(screen)
	if err != nil {
		return 0, err
	}
	return mode.Refresh, nil
}

func (s *swayBackend) CurrentRotation(screen string) (int, error) {
	outputs, err := s.selectOutputs(screen)
	if err != nil {
		return 0, err
	}
	for _, so := range outputs {
		if so.Active {
			return transformToDegrees(so.Transform), nil
		}
	}
	return 0, regerr.NotFound("Current rotation")
}

func (s *swayBackend) SetMode(screen string, params ModeParams) error {
	outputs, err := s.selectOutputs(screen)
	if err != nil {
		return err
	}
	anySuccess := false
	for _, so := range outputs {
		if !so.advertises(params) {
			logger.Warnf("Mode %dx%d@%dHz is not available for output '%s'",
				params.Width, params.Height, params.Refresh, so.Name)
			continue
		}
		modeArg := fmt.Sprintf("%dx%d@%dHz", params.Width, params.Height, params.Refresh)
		if _, err := s.swaymsg("output", so.Name, "mode", modeArg); err != nil {
			return err
		}
		logger.Infof("Mode set to %s for output '%s'", modeArg, so.Name)
		anySuccess = true
	}
	if screen != "" && !anySuccess {
		return regerr.Backend("Wayland", "Failed to set mode %dx%d@%dHz for specified screen",
			params.Width, params.Height, params.Refresh)
	}
	return nil
}

// advertises matches on resolution only: sway reports slightly
// different refresh values than clients request.
func (so *swayOutput) advertises(params ModeParams) bool {
	for _, m := range so.Modes {
		if uint32(m.Width) == params.Width && uint32(m.Height) == params.Height {
			return true
		}
	}
	return false
}

func (s *swayBackend) SetRotation(screen string, degrees int) error {
	outputs, err := s.selectOutputs(screen)
	if err != nil {
		return err
	}
	for _, so := range outputs {
		transform := strconv.Itoa(degrees)
		if _, err := s.swaymsg("output", so.Name, "transform", transform); err != nil {
			return err
		}
		logger.Infof("Rotation set to '%d' for output '%s'", degrees, so.Name)
	}
	return nil
}

func parseResolution(res string) (uint32, uint32, error) {
	parts := strings.Split(res, "x")
	if len(parts) != 2 {
		return 0, 0, regerr.InvalidArguments("Invalid resolution format: '%s'. Expected 'WxH'", res)
	}
	width, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, regerr.Parse("Failed to parse width: %v", err)
	}
	height, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, regerr.Parse("Failed to parse height: %v", err)
	}
	if width == 0 || height == 0 {
		return 0, 0, regerr.InvalidArguments("Resolution dimensions must be positive: %dx%d", width, height)
	}
	return uint32(width), uint32(height), nil
}

func (s *swayBackend) SetMaxResolution(screen string, maxRes string) error {
	maxW, maxH := uint32(1920), uint32(1080)
	if maxRes != "" {
		var err error
		maxW, maxH, err = parseResolution(maxRes)
		if err != nil {
			return err
		}
	}

	var target *swayOutput
	if screen != "" {
		outputs, err := s.selectOutputs(screen)
		if err != nil {
			return err
		}
		target = &outputs[0]
	} else {
		out, err := s.focusedOutput()
		if err != nil {
			return err
		}
		target = out
	}
	if target == nil || target.CurrentMode == nil {
		logger.Warnf("No suitable resolution found within %dx%d limits", maxW, maxH)
		return nil
	}

	if uint32(target.CurrentMode.Width) <= maxW && uint32(target.CurrentMode.Height) <= maxH {
		logger.Infof("Current resolution %dx%d is already within limits",
			target.CurrentMode.Width, target.CurrentMode.Height)
		return nil
	}

	// Largest advertised mode that fits within the bound.
	var best *swayMode
	for i, m := range target.Modes {
		if uint32(m.Width) > maxW || uint32(m.Height) > maxH {
			continue
		}
		if best == nil || m.Width*m.Height > best.Width*best.Height {
			best = &target.Modes[i]
		}
	}
	if best == nil {
		logger.Warnf("No suitable resolution found within %dx%d limits", maxW, maxH)
		return nil
	}

	modeArg := fmt.Sprintf("%dx%d@%dHz", best.Width, best.Height, refreshHz(best.Refresh))
	if _, err := s.swaymsg("output", target.Name, "mode", modeArg); err != nil {
		return err
	}
	logger.Infof("Resolution set to %dx%d for output '%s'", best.Width, best.Height, target.Name)
	return nil
}

func (s *swayBackend) TakeScreenshot(dir string) (string, error) {
	if _, err := exec.LookPath("grim"); err != nil {
		return "", regerr.System("grim is not installed or unavailable")
	}
	out, err := s.focusedOutput()
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", regerr.NotFound("Active output")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", regerr.System("failed to create screenshot directory: %v", err)
	}
	filename := fmt.Sprintf("screenshot-%s.png", time.Now().Format("2006.01.02-15h04.05"))
	path := filepath.Join(dir, filename)

	cmd := exec.Command("grim", "-o", out.Name, path)
	cmd.Env = append(os.Environ(), "SWAYSOCK="+s.socketPath)
	if err := cmd.Run(); err != nil {
		return "", regerr.Backend("Wayland", "failed to capture screen: %v", err)
	}
	return path, nil
}

func (s *swayBackend) MapTouchscreen() error {
	raw, err := s.swaymsg("-t", "get_inputs", "-r")
	if err != nil {
		return err
	}
	var inputs []struct {
		Identifier string `json:"identifier"`
		Type       string `json:"type"`
	}
	if err := json.Unmarshal(raw, &inputs); err != nil {
		return regerr.Backend("Wayland", "failed to parse sway inputs: %v", err)
	}
	var touch string
	for _, in := range inputs {
		if in.Type == "touch" {
			touch = in.Identifier
			break
		}
	}
	if touch == "" {
		return regerr.NotFound("Touchscreen device")
	}
	out, err := s.focusedOutput()
	if err != nil {
		return err
	}
	if out == nil {
		return regerr.NotFound("Active output")
	}
	if _, err := s.swaymsg("input", touch, "map_to_output", out.Name); err != nil {
		return err
	}
	logger.Infof("Mapped touchscreen '%s' to output '%s'", touch, out.Name)
	return nil
}

// Package screen formats display state for the wire and routes
// operations to the selected display backend. One Service is built at
// daemon startup and passed down explicitly.
package screen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/regmsg/internal/config"
	"github.com/bnema/regmsg/internal/display"
	"github.com/bnema/regmsg/internal/logger"
	"github.com/bnema/regmsg/internal/regerr"
)

// Service ties a display backend to the paths and limits it operates
// with.
type Service struct {
	backend       display.Backend
	screenshotDir string
	maxResolution string
}

// NewService builds a Service around the selected backend.
func NewService(backend display.Backend, cfg *config.Config) *Service {
	return &Service{
		backend:       backend,
		screenshotDir: cfg.Screen.ScreenshotDir,
		maxResolution: cfg.Screen.MaxResolution,
	}
}

// Backend exposes the underlying backend, mainly for tests.
func (s *Service) Backend() display.Backend { return s.backend }

// ParseMode parses "WxH@R", "WxH" or "WxHxR". A missing refresh rate
// defaults to 60 Hz. Empty segments are kept during splitting so
// trailing separators are rejected rather than silently dropped.
func ParseMode(mode string) (display.ModeParams, error) {
	logger.Debugf("Parsing display mode: %s", mode)
	normalized := strings.ReplaceAll(mode, "@", "x")
	parts := strings.Split(normalized, "x")
	if len(parts) < 2 || len(parts) > 3 {
		return display.ModeParams{}, regerr.InvalidArguments("Invalid mode format. Use 'WxH@R' or 'WxH'")
	}

	width, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return display.ModeParams{}, regerr.Parse("Invalid width")
	}
	height, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return display.ModeParams{}, regerr.Parse("Invalid height")
	}
	refresh := uint64(60)
	if len(parts) == 3 {
		refresh, err = strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return display.ModeParams{}, regerr.Parse("Invalid refresh rate")
		}
	}

	return display.ModeParams{
		Width:   uint32(width),
		Height:  uint32(height),
		Refresh: uint32(refresh),
	}, nil
}

// ListModes renders every advertised mode as "WxH@R:name WxH@RHz"
// lines.
func (s *Service) ListModes(screen string) (string, error) {
	modes, err := s.backend.ListModes(screen)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(modes))
	for _, m := range modes {
		lines = append(lines, fmt.Sprintf("%dx%d@%d:%s %dx%d@%dHz",
			m.Width, m.Height, m.Refresh, m.Name, m.Width, m.Height, m.Refresh))
	}
	return strings.Join(lines, "\n"), nil
}

// ListOutputs renders the output names, one per line.
func (s *Service) ListOutputs() (string, error) {
	outputs, err := s.backend.ListOutputs()
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(outputs))
	for _, out := range outputs {
		names = append(names, out.Name)
	}
	return strings.Join(names, "\n"), nil
}

func (s *Service) CurrentMode(screen string) (string, error) {
	mode, err := s.backend.CurrentMode(screen)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%dx%d@%d", mode.Width, mode.Height, mode.Refresh), nil
}

// CurrentOutput reports the first connected output with an active mode.
func (s *Service) CurrentOutput() (string, error) {
	outputs, err := s.backend.ListOutputs()
	if err != nil {
		return "", err
	}
	for _, out := range outputs {
		if out.Connected && out.CurrentMode != nil {
			return out.Name, nil
		}
	}
	return "No active output", nil
}

func (s *Service) CurrentResolution(screen string) (string, error) {
	width, height, err := s.backend.CurrentResolution(screen)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%dx%d", width, height), nil
}

func (s *Service) CurrentRefresh(screen string) (string, error) {
	refresh, err := s.backend.CurrentRefreshRate(screen)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%dHz", refresh), nil
}

func (s *Service) CurrentRotation(screen string) (string, error) {
	rotation, err := s.backend.CurrentRotation(screen)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(rotation), nil
}

// CurrentBackend reports which backend answers requests.
func (s *Service) CurrentBackend() (string, error) {
	return s.backend.Name(), nil
}

// SetMode applies a mode string. A "max-" prefix routes to the
// resolution clamp instead of an exact mode set.
func (s *Service) SetMode(screen, mode string) error {
	if strings.HasPrefix(mode, "max-") {
		return s.backend.SetMaxResolution(screen, strings.TrimPrefix(mode, "max-"))
	}
	params, err := ParseMode(mode)
	if err != nil {
		return err
	}
	return s.backend.SetMode(screen, params)
}

// SetOutput applies a mode string to every connected output.
func (s *Service) SetOutput(mode string) error {
	params, err := ParseMode(mode)
	if err != nil {
		return err
	}
	return s.backend.SetMode("", params)
}

// SetRotation validates the rotation value before it reaches the
// backend.
func (s *Service) SetRotation(screen, rotation string) error {
	degrees, err := strconv.Atoi(rotation)
	if err != nil {
		return regerr.InvalidArguments("Invalid rotation: '%s'. Must be a number", rotation)
	}
	switch degrees {
	case 0, 90, 180, 270:
	default:
		return regerr.InvalidArguments("Rotation must be one of: 0, 90, 180, 270")
	}
	return s.backend.SetRotation(screen, degrees)
}

// TakeScreenshot captures the active output into the configured
// screenshot directory.
func (s *Service) TakeScreenshot() error {
	path, err := s.backend.TakeScreenshot(s.screenshotDir)
	if err != nil {
		return err
	}
	logger.Infof("Screenshot saved to: %s", path)
	return nil
}

func (s *Service) MapTouchscreen() error {
	return s.backend.MapTouchscreen()
}

// MinToMaxResolution clamps the active resolution to the configured
// maximum.
func (s *Service) MinToMaxResolution(screen string) error {
	return s.backend.SetMaxResolution(screen, s.maxResolution)
}

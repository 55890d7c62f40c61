package display

import (
	"fmt"
	"os"

	"github.com/NeowayLabs/drm"
	drmmode "github.com/NeowayLabs/drm/mode"

	"github.com/bnema/regmsg/internal/logger"
	"github.com/bnema/regmsg/internal/regerr"
)

const maxDRMCards = 16

// drmConnectorTypeNames maps DRM connector type ids to the names the
// kernel uses, so connectors show up as "HDMI-A-1" style identifiers.
var drmConnectorTypeNames = map[uint32]string{
	0:  "Unknown",
	1:  "VGA",
	2:  "DVI-I",
	3:  "DVI-D",
	4:  "DVI-A",
	5:  "Composite",
	6:  "SVIDEO",
	7:  "LVDS",
	8:  "Component",
	9:  "DIN",
	10: "DP",
	11: "HDMI-A",
	12: "HDMI-B",
	13: "TV",
	14: "eDP",
	15: "Virtual",
	16: "DSI",
	17: "DPI",
}

// drmBackend reads display state straight from the kernel DRM
// interface. It cannot reconfigure a CRTC while another master holds
// the device, so mode changes are recorded in a state file that the
// platform's video bootstrap applies on the next restart.
type drmBackend struct {
	cardNum  int
	modeFile string
}

// NewDRMBackend probes the render cards and binds to the one exposing
// the most connectors.
func NewDRMBackend(modeFile string) (Backend, error) {
	bestCard := -1
	bestConnectors := 0
	for i := 0; i < maxDRMCards; i++ {
		file, err := drm.OpenCard(i)
		if err != nil {
			continue
		}
		res, err := drmmode.GetResources(file)
		if err == nil && len(res.Connectors) > bestConnectors {
			bestCard = i
			bestConnectors = len(res.Connectors)
		}
		file.Close()
	}
	if bestCard < 0 {
		return nil, regerr.System("No DRM device found or accessible")
	}
	logger.Debugf("Selected DRM card %d with %d connectors", bestCard, bestConnectors)
	return &drmBackend{cardNum: bestCard, modeFile: modeFile}, nil
}

func (d *drmBackend) Name() string { return "DRM" }

func (d *drmBackend) openCard() (*os.File, error) {
	file, err := drm.OpenCard(d.cardNum)
	if err != nil {
		return nil, regerr.Backend("DRM", "failed to open card %d: %v", d.cardNum, err)
	}
	return file, nil
}

func connectorName(c *drmmode.Connector) string {
	typeName, ok := drmConnectorTypeNames[c.Type]
	if !ok {
		typeName = "Unknown"
	}
	return fmt.Sprintf("%s-%d", typeName, c.TypeID)
}

// connectedOutputs returns the connected connectors, optionally
// filtered by connector name. The card stays open only for the
// duration of the call.
func (d *drmBackend) connectedOutputs(screen string) ([]Output, error) {
	file, err := d.openCard()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	res, err := drmmode.GetResources(file)
	if err != nil {
		return nil, regerr.Backend("DRM", "failed to get resources: %v", err)
	}

	var outputs []Output
	for _, connID := range res.Connectors {
		conn, err := drmmode.GetConnector(file, connID)
		if err != nil {
			logger.Debugf("Failed to query connector %d: %v", connID, err)
			continue
		}
		if conn.Connection != drmmode.Connected {
			continue
		}
		name := connectorName(conn)
		if screen != "" && name != screen {
			logger.Debugf("Skipping connector %s - doesn't match screen filter '%s'", name, screen)
			continue
		}
		out := Output{Name: name, Connected: true}
		for _, info := range conn.Modes {
			w, h, r := uint32(info.Hdisplay), uint32(info.Vdisplay), info.Vrefresh
			out.Modes = append(out.Modes, Mode{Width: w, Height: h, Refresh: r, Name: modeName(w, h, r)})
		}
		out.CurrentMode = currentCrtcMode(file, conn)
		outputs = append(outputs, out)
	}

	if screen != "" && len(outputs) == 0 {
		return nil, regerr.NotFound("Screen '%s' not found", screen)
	}
	return outputs, nil
}

// currentCrtcMode resolves connector to encoder to CRTC and reads the
// active mode, if any.
func currentCrtcMode(file *os.File, conn *drmmode.Connector) *Mode {
	if conn.EncoderID == 0 {
		return nil
	}
	enc, err := drmmode.GetEncoder(file, conn.EncoderID)
	if err != nil || enc.CrtcID == 0 {
		return nil
	}
	crtc, err := drmmode.GetCrtc(file, enc.CrtcID)
	if err != nil || crtc.ModeValid == 0 {
		return nil
	}
	w, h := uint32(crtc.Mode.Hdisplay), uint32(crtc.Mode.Vdisplay)
	r := crtc.Mode.Vrefresh
	return &Mode{Width: w, Height: h, Refresh: r, Name: modeName(w, h, r)}
}

func (d *drmBackend) ListOutputs() ([]Output, error) {
	return d.connectedOutputs("")
}

func (d *drmBackend) ListModes(screen string) ([]Mode, error) {
	outputs, err := d.connectedOutputs(screen)
	if err != nil {
		return nil, err
	}
	var modes []Mode
	for _, out := range outputs {
		modes = append(modes, out.Modes...)
	}
	return modes, nil
}

func (d *drmBackend) CurrentMode(screen string) (*Mode, error) {
	outputs, err := d.connectedOutputs(screen)
	if err != nil {
		return nil, err
	}
	for _, out := range outputs {
		if out.CurrentMode != nil {
			return out.CurrentMode, nil
		}
	}
	return nil, regerr.NotFound("Current mode")
}

func (d *drmBackend) CurrentResolution(screen string) (uint32, uint32, error) {
	mode, err := d.CurrentMode(screen)
	if err != nil {
		return 0, 0, err
	}
	return mode.Width, mode.Height, nil
}

func (d *drmBackend) CurrentRefreshRate(screen string) (uint32, error) {
	mode, err := d.CurrentMode(screen)
	if err != nil {
		return 0, err
	}
	return mode.Refresh, nil
}

// CurrentRotation always reports 0: rotation is a compositor concern,
// the connector level has no such state.
func (d *drmBackend) CurrentRotation(screen string) (int, error) {
	if screen != "" {
		if _, err := d.connectedOutputs(screen); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

// SetMode validates the requested mode against the advertised mode
// lists and records it in the mode state file.
func (d *drmBackend) SetMode(screen string, params ModeParams) error {
	outputs, err := d.connectedOutputs(screen)
	if err != nil {
		return err
	}
	return d.applyMode(outputs, screen, params)
}

// applyMode writes the mode file for the first output advertising the
// exact mode. Outputs without the mode are skipped with a warning;
// that is an error only when a specific screen was requested.
func (d *drmBackend) applyMode(outputs []Output, screen string, params ModeParams) error {
	for _, out := range outputs {
		for _, m := range out.Modes {
			if m.Width == params.Width && m.Height == params.Height && m.Refresh == params.Refresh {
				return d.writeModeFile(fmt.Sprintf("%dx%d@%d", params.Width, params.Height, params.Refresh))
			}
		}
		logger.Warnf("Mode %dx%d@%d not found for output %s",
			params.Width, params.Height, params.Refresh, out.Name)
	}
	if screen != "" {
		return regerr.Backend("DRM", "mode %dx%d@%d not available on any connected output",
			params.Width, params.Height, params.Refresh)
	}
	return nil
}

func (d *drmBackend) writeModeFile(value string) error {
	if err := os.WriteFile(d.modeFile, []byte(value), 0644); err != nil {
		return regerr.System("Failed to write to DRM mode path: %v", err)
	}
	logger.Infof("Recorded mode %s in %s", value, d.modeFile)
	return nil
}

func (d *drmBackend) SetRotation(screen string, degrees int) error {
	return regerr.Backend("DRM", "Rotation not supported at DRM level directly")
}

func (d *drmBackend) SetMaxResolution(screen string, maxRes string) error {
	maxW, maxH := uint32(1920), uint32(1080)
	if maxRes != "" {
		var err error
		maxW, maxH, err = parseResolution(maxRes)
		if err != nil {
			return err
		}
	}
	outputs, err := d.connectedOutputs(screen)
	if err != nil {
		return err
	}
	for _, out := range outputs {
		cur := out.CurrentMode
		if cur == nil || (cur.Width <= maxW && cur.Height <= maxH) {
			continue
		}
		var best *Mode
		for i, m := range out.Modes {
			if m.Width > maxW || m.Height > maxH {
				continue
			}
			if best == nil || m.Width*m.Height > best.Width*best.Height {
				best = &out.Modes[i]
			}
		}
		if best == nil {
			logger.Warnf("No suitable resolution found within %dx%d limits", maxW, maxH)
			continue
		}
		return d.writeModeFile(fmt.Sprintf("%dx%d@%d", best.Width, best.Height, best.Refresh))
	}
	return nil
}

func (d *drmBackend) TakeScreenshot(dir string) (string, error) {
	return "", regerr.Backend("DRM", "Screenshot not supported at DRM level directly")
}

// MapTouchscreen is a no-op success: there is no input stack to map to
// at the DRM level.
func (d *drmBackend) MapTouchscreen() error {
	logger.Info("No touchscreen support for DRM backend")
	return nil
}

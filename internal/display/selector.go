package display

import (
	"os"

	"github.com/bnema/regmsg/internal/config"
	"github.com/bnema/regmsg/internal/logger"
	"github.com/bnema/regmsg/internal/regerr"
)

// Candidate pairs a backend constructor with an availability probe.
// A nil Probe means the constructor itself decides by returning an error.
type Candidate struct {
	Name  string
	Probe func() bool
	New   func() (Backend, error)
}

// Select walks candidates in order and returns the first backend whose
// probe passes and whose constructor succeeds. Selection happens once
// at daemon startup; the result is carried explicitly by callers.
func Select(candidates []Candidate) (Backend, error) {
	for _, c := range candidates {
		if c.Probe != nil && !c.Probe() {
			logger.Debugf("Backend %s not available, skipping", c.Name)
			continue
		}
		backend, err := c.New()
		if err != nil {
			logger.Debugf("Backend %s failed to initialize: %v", c.Name, err)
			continue
		}
		logger.Infof("Using %s display backend", backend.Name())
		return backend, nil
	}
	return nil, regerr.System("No backend available")
}

// DefaultCandidates returns the standard probe order: sway first when
// its IPC socket exists, then raw DRM.
func DefaultCandidates(cfg *config.Config) []Candidate {
	return []Candidate{
		{
			Name: "sway",
			// The socket path reaches swaymsg through each command's
			// environment, so the probe only checks presence.
			Probe: func() bool {
				_, err := os.Stat(cfg.Screen.SwaySocket)
				return err == nil
			},
			New: func() (Backend, error) {
				return NewSwayBackend(cfg.Screen.SwaySocket)
			},
		},
		{
			Name: "drm",
			New: func() (Backend, error) {
				return NewDRMBackend(cfg.Screen.DRMModeFile)
			},
		},
	}
}

// Package controller keeps the set of game controllers registered with
// the daemon, resolving their input mappings from SDL
// gamecontrollerdb.txt files.
package controller

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/bnema/regmsg/internal/logger"
	"github.com/bnema/regmsg/internal/regerr"
)

// MaxControllers bounds the number of simultaneously registered
// controllers.
const MaxControllers = 8

// Controller is a registered controller with its resolved SDL mapping.
type Controller struct {
	GUID   string            `json:"guid"`
	Name   string            `json:"name"`
	Inputs map[string]string `json:"inputs"`
}

// Store is the in-memory controller registry, owned by the daemon
// process. Safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	controllers map[int]Controller
	dbPaths     []string
}

// NewStore returns an empty store resolving mappings from the given
// database files, tried in order.
func NewStore(dbPaths []string) *Store {
	return &Store{
		controllers: make(map[int]Controller),
		dbPaths:     dbPaths,
	}
}

// parseMappingData splits "Name,a:b0,b:b1,..." into the controller name
// and its input map.
func parseMappingData(mappingData string) (string, map[string]string) {
	parts := strings.Split(mappingData, ",")
	if len(parts) == 0 {
		return "Unknown", map[string]string{}
	}

	name := parts[0]
	inputs := make(map[string]string)
	for _, part := range parts[1:] {
		if pos := strings.Index(part, ":"); pos >= 0 {
			inputs[part[:pos]] = part[pos+1:]
		}
	}
	return name, inputs
}

// lookupMapping scans the database files for the GUID and returns the
// mapping data after it, or "" when the GUID is unknown.
func (s *Store) lookupMapping(guid string) (string, error) {
	for _, path := range s.dbPaths {
		file, err := os.Open(path)
		if err != nil {
			logger.Debugf("Skipping controller db %s: %v", path, err)
			continue
		}
		logger.Debugf("Loading gamecontrollerdb from %s to find GUID %s", path, guid)

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
				continue
			}
			// Entry format: GUID,name,buttons...,platform:...
			parts := strings.Split(line, ",")
			if len(parts) >= 3 && parts[0] == guid {
				file.Close()
				return strings.Join(parts[1:], ","), nil
			}
		}
		err = scanner.Err()
		file.Close()
		if err != nil {
			return "", regerr.System("failed to read controller db %s: %v", path, err)
		}
	}
	return "", nil
}

// Add registers the controller at the given index. Already-occupied
// indexes and unknown GUIDs are silent no-ops; exceeding the controller
// limit is an error.
func (s *Store) Add(index int, guid string) error {
	s.mu.Lock()
	occupied := false
	if _, ok := s.controllers[index]; ok {
		occupied = true
	}
	s.mu.Unlock()
	if occupied {
		logger.Debugf("Controller with index %d is already configured", index)
		return nil
	}

	mappingData, err := s.lookupMapping(guid)
	if err != nil {
		return err
	}
	if mappingData == "" {
		logger.Debugf("Controller mapping not found for GUID: %s", guid)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.controllers) >= MaxControllers {
		return regerr.System("Maximum number of controllers (%d) reached. Cannot add more.", MaxControllers)
	}

	name, inputs := parseMappingData(mappingData)
	s.controllers[index] = Controller{GUID: guid, Name: name, Inputs: inputs}
	logger.Infof("Added controller '%s' (GUID %s) at index %d", name, guid, index)
	return nil
}

// Remove drops every controller with the given GUID and returns the
// removed set. An unknown GUID removes nothing.
func (s *Store) Remove(guid string) []Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []Controller
	for index, c := range s.controllers {
		if c.GUID == guid {
			removed = append(removed, c)
			delete(s.controllers, index)
		}
	}
	if len(removed) == 0 {
		logger.Debugf("Controller with GUID %s was not found for removal", guid)
	}
	return removed
}

// JSON renders the registry keyed by controller index.
func (s *Store) JSON() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(s.controllers)
	if err != nil {
		return "", regerr.Conversion("failed to serialize controllers: %v", err)
	}
	return string(data), nil
}

// Len reports the number of registered controllers.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.controllers)
}

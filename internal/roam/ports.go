package roam

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/aidanlsb/rook/internal/paths"
)

// DefaultPort is the local API's well-known port, used whenever the
// discovery file is absent or unreadable.
const DefaultPort = 3333

// portCache remembers the discovered port for the lifetime of the process.
// The desktop app may bind a fresh port on every launch, so connection-class
// failures invalidate the cache and the next attempt re-reads the file.
type portCache struct {
	mu    sync.Mutex
	port  int
	valid bool
}

// sharedPorts is process-wide: every client sees the same discovery state.
var sharedPorts portCache

func (c *portCache) get(discover func() int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		c.port = discover()
		c.valid = true
	}
	return c.port
}

func (c *portCache) invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

// discoverPort reads the port file the desktop app maintains while its API
// is listening. Every failure mode falls back to DefaultPort.
func discoverPort(portFile string) int {
	if portFile == "" {
		p, err := paths.RoamPortFile()
		if err != nil {
			return DefaultPort
		}
		portFile = p
	}
	data, err := os.ReadFile(portFile)
	if err != nil {
		return DefaultPort
	}
	var doc struct {
		Port int `json:"port"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.Port <= 0 || doc.Port > 65535 {
		return DefaultPort
	}
	return doc.Port
}

package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
)

const defaultDatabasePath = "products.db"

// DatabaseConfig points at the single SQLite file backing the catalog.
type DatabaseConfig struct {
	Path        string `koanf:"path"`
	BusyTimeout int    `koanf:"busytimeout"` // milliseconds
}

// String returns a string representation of the database configuration.
func (c *DatabaseConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Database ---\n")
	b.WriteString(fmt.Sprintf("  path: %s\n", c.Path))
	b.WriteString(fmt.Sprintf("  busytimeout: %dms\n", c.BusyTimeout))
	return b.String()
}

func (c *DatabaseConfig) Validate() error {
	if c.Path == "" {
		log.Println("Using default value for database.path")
		c.Path = defaultDatabasePath
	}
	if strings.HasPrefix(c.Path, "file:") || strings.Contains(c.Path, "?") {
		return fmt.Errorf("database path must be a plain file path, got: %s", c.Path)
	}
	if filepath.Base(c.Path) == "." || strings.HasSuffix(c.Path, string(filepath.Separator)) {
		return fmt.Errorf("database path must name a file: %s", c.Path)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("invalid database busy timeout: %d", c.BusyTimeout)
	}
	return nil
}

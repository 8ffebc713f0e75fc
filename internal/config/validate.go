package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind %q: %w", c.Server.Bind, err)
	}
	if c.Server.ShareName == "" {
		return errors.New("server.share_name must be set")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Source {
	case SourceSQLite:
		if c.Paths.LibraryDB == "" {
			return errors.New("paths.library_db must be set when catalog.source is sqlite")
		}
	case SourcePipe:
	default:
		return fmt.Errorf("catalog.source: unsupported value %q (want %q or %q)", c.Catalog.Source, SourceSQLite, SourcePipe)
	}
	if c.Catalog.RowLimit < 0 {
		return errors.New("catalog.row_limit must be zero (unlimited) or positive")
	}
	if c.Catalog.FieldMarkerLen < 0 {
		return errors.New("catalog.field_marker_len must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

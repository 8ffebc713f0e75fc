package config

import (
	"os"
	"os/user"
	"strings"
)

const (
	defaultLogDir            = "~/.local/share/daapshare/logs"
	defaultLibraryDB         = "~/.local/share/daapshare/library.db"
	defaultMediaDir          = "~/Music"
	defaultBind              = "0.0.0.0:3689"
	defaultSessionSeed       = 42
	defaultReadHeaderTimeout = 5
	defaultIdleTimeout       = 60
	defaultShutdownTimeout   = 5
	defaultCatalogSource     = SourceSQLite
	defaultRowLimit          = 500
	defaultFieldMarkerLen    = 5
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Catalog sources.
const (
	SourceSQLite = "sqlite"
	SourcePipe   = "pipe"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			LibraryDB: defaultLibraryDB,
			MediaDir:  defaultMediaDir,
		},
		Server: Server{
			Bind:                  defaultBind,
			ShareName:             defaultShareName(),
			SessionSeed:           defaultSessionSeed,
			ReadHeaderTimeoutSecs: defaultReadHeaderTimeout,
			IdleTimeoutSecs:       defaultIdleTimeout,
			ShutdownTimeoutSecs:   defaultShutdownTimeout,
		},
		Catalog: Catalog{
			Source:         defaultCatalogSource,
			RowLimit:       defaultRowLimit,
			FieldMarkerLen: defaultFieldMarkerLen,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultShareName() string {
	name := ""
	if u, err := user.Current(); err == nil {
		name = strings.TrimSpace(u.Username)
	}
	if name == "" {
		name = strings.TrimSpace(os.Getenv("USER"))
	}
	if name == "" {
		return "daapshare"
	}
	return name + " Music"
}

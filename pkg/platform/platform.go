// Package platform provides OS-specific abstractions for cross-platform support.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
)

// ID represents a platform identifier.
type ID string

const (
	Darwin  ID = "darwin"
	Linux   ID = "linux"
	Windows ID = "windows"
)

// AppName is the directory name used under the per-user config/data dirs.
const AppName = "gctlogin"

const (
	envHome          = "HOME"
	envUserProfile   = "USERPROFILE"
	envXDGConfigHome = "XDG_CONFIG_HOME"
	envXDGDataHome   = "XDG_DATA_HOME"
	envXDGStateHome  = "XDG_STATE_HOME"
	envAppData       = "APPDATA"
	envLocalAppData  = "LOCALAPPDATA"
)

// Platform abstracts OS-specific operations.
type Platform interface {
	// Identity
	ID() ID
	Architecture() string
	Name() string

	// Paths
	GetDataDir() string
	GetConfigDir() string
	GetLogDir() string
}

// current holds the singleton platform instance.
var current Platform

// Current returns the Platform implementation for the current OS.
func Current() Platform {
	if current == nil {
		current = newPlatform(ID(runtime.GOOS), os.Getenv)
	}
	return current
}

// CurrentID returns the current platform ID.
func CurrentID() ID {
	return ID(runtime.GOOS)
}

// IsWindows returns true if running on Windows.
func IsWindows() bool {
	return runtime.GOOS == string(Windows)
}

// HomeDirEnv returns the environment variable name for the home directory.
func HomeDirEnv() string {
	if IsWindows() {
		return envUserProfile
	}
	return envHome
}

type osPlatform struct {
	id     ID
	getenv func(string) string
}

func newPlatform(id ID, getenv func(string) string) *osPlatform {
	return &osPlatform{id: id, getenv: getenv}
}

func (p *osPlatform) ID() ID               { return p.id }
func (p *osPlatform) Architecture() string { return runtime.GOARCH }

func (p *osPlatform) Name() string {
	switch p.id {
	case Darwin:
		return "macOS"
	case Linux:
		return "Linux"
	case Windows:
		return "Windows"
	default:
		return string(p.id)
	}
}

func (p *osPlatform) home() string {
	if p.id == Windows {
		return p.getenv(envUserProfile)
	}
	return p.getenv(envHome)
}

// GetConfigDir returns the directory holding config.yaml.
func (p *osPlatform) GetConfigDir() string {
	switch p.id {
	case Darwin:
		return filepath.Join(p.home(), "Library", "Application Support", AppName)
	case Windows:
		return filepath.Join(p.envOr(envAppData, filepath.Join(p.home(), "AppData", "Roaming")), AppName)
	default:
		return filepath.Join(p.envOr(envXDGConfigHome, filepath.Join(p.home(), ".config")), AppName)
	}
}

// GetDataDir returns the directory holding the account database.
func (p *osPlatform) GetDataDir() string {
	switch p.id {
	case Darwin:
		return filepath.Join(p.home(), "Library", "Application Support", AppName, "data")
	case Windows:
		return filepath.Join(p.envOr(envLocalAppData, filepath.Join(p.home(), "AppData", "Local")), AppName, "data")
	default:
		return filepath.Join(p.envOr(envXDGDataHome, filepath.Join(p.home(), ".local", "share")), AppName)
	}
}

// GetLogDir returns the directory for log files.
func (p *osPlatform) GetLogDir() string {
	switch p.id {
	case Darwin:
		return filepath.Join(p.home(), "Library", "Logs", AppName)
	case Windows:
		return filepath.Join(p.envOr(envLocalAppData, filepath.Join(p.home(), "AppData", "Local")), AppName, "logs")
	default:
		return filepath.Join(p.envOr(envXDGStateHome, filepath.Join(p.home(), ".local", "state")), AppName, "logs")
	}
}

func (p *osPlatform) envOr(key, fallback string) string {
	if v := p.getenv(key); v != "" {
		return v
	}
	return fallback
}

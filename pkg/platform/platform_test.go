package platform

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestIDs(t *testing.T) {
	// Test ID constants
	if Darwin != "darwin" {
		t.Errorf("Darwin = %q, want %q", Darwin, "darwin")
	}
	if Linux != "linux" {
		t.Errorf("Linux = %q, want %q", Linux, "linux")
	}
	if Windows != "windows" {
		t.Errorf("Windows = %q, want %q", Windows, "windows")
	}
}

func TestCurrent(t *testing.T) {
	plat := Current()
	if plat == nil {
		t.Fatal("Current() returned nil")
	}

	// Should return same instance on subsequent calls
	plat2 := Current()
	if plat != plat2 {
		t.Error("Current() should return same instance")
	}

	if plat.ID() != ID(runtime.GOOS) {
		t.Errorf("ID() = %q, want %q", plat.ID(), runtime.GOOS)
	}
	if plat.Architecture() != runtime.GOARCH {
		t.Errorf("Architecture() = %q, want %q", plat.Architecture(), runtime.GOARCH)
	}
}

func TestCurrentID(t *testing.T) {
	id := CurrentID()
	expected := ID(runtime.GOOS)

	if id != expected {
		t.Errorf("CurrentID() = %q, want %q", id, expected)
	}
}

func TestHomeDirEnv(t *testing.T) {
	want := "HOME"
	if runtime.GOOS == "windows" {
		want = "USERPROFILE"
	}
	if got := HomeDirEnv(); got != want {
		t.Errorf("HomeDirEnv() = %q, want %q", got, want)
	}
}

func fakeEnv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestPaths(t *testing.T) {
	tests := []struct {
		name       string
		id         ID
		env        map[string]string
		wantConfig string
		wantData   string
		wantLog    string
	}{
		{
			name:       "linux defaults",
			id:         Linux,
			env:        map[string]string{"HOME": "/home/u"},
			wantConfig: filepath.Join("/home/u", ".config", AppName),
			wantData:   filepath.Join("/home/u", ".local", "share", AppName),
			wantLog:    filepath.Join("/home/u", ".local", "state", AppName, "logs"),
		},
		{
			name: "linux xdg",
			id:   Linux,
			env: map[string]string{
				"HOME":            "/home/u",
				"XDG_CONFIG_HOME": "/cfg",
				"XDG_DATA_HOME":   "/data",
				"XDG_STATE_HOME":  "/state",
			},
			wantConfig: filepath.Join("/cfg", AppName),
			wantData:   filepath.Join("/data", AppName),
			wantLog:    filepath.Join("/state", AppName, "logs"),
		},
		{
			name:       "darwin",
			id:         Darwin,
			env:        map[string]string{"HOME": "/Users/u"},
			wantConfig: filepath.Join("/Users/u", "Library", "Application Support", AppName),
			wantData:   filepath.Join("/Users/u", "Library", "Application Support", AppName, "data"),
			wantLog:    filepath.Join("/Users/u", "Library", "Logs", AppName),
		},
		{
			name: "windows",
			id:   Windows,
			env: map[string]string{
				"USERPROFILE":  `C:\Users\u`,
				"APPDATA":      `C:\Users\u\AppData\Roaming`,
				"LOCALAPPDATA": `C:\Users\u\AppData\Local`,
			},
			wantConfig: filepath.Join(`C:\Users\u\AppData\Roaming`, AppName),
			wantData:   filepath.Join(`C:\Users\u\AppData\Local`, AppName, "data"),
			wantLog:    filepath.Join(`C:\Users\u\AppData\Local`, AppName, "logs"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlatform(tt.id, fakeEnv(tt.env))

			if got := p.GetConfigDir(); got != tt.wantConfig {
				t.Errorf("GetConfigDir() = %q, want %q", got, tt.wantConfig)
			}
			if got := p.GetDataDir(); got != tt.wantData {
				t.Errorf("GetDataDir() = %q, want %q", got, tt.wantData)
			}
			if got := p.GetLogDir(); got != tt.wantLog {
				t.Errorf("GetLogDir() = %q, want %q", got, tt.wantLog)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := map[ID]string{
		Darwin:  "macOS",
		Linux:   "Linux",
		Windows: "Windows",
		"plan9": "plan9",
	}
	for id, want := range tests {
		if got := newPlatform(id, fakeEnv(nil)).Name(); got != want {
			t.Errorf("Name(%s) = %q, want %q", id, got, want)
		}
	}
}

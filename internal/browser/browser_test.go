package browser

import (
	"context"
	"errors"
	"testing"
)

type recorder struct {
	ran    []string
	opened []string
	runErr error
	urlErr error
}

func (r *recorder) system(env string) *System {
	return &System{
		getenv: func(k string) string {
			if k == EnvVarName {
				return env
			}
			return ""
		},
		run: func(ctx context.Context, name string, args ...string) error {
			r.ran = append(r.ran, name+" "+args[0])
			return r.runErr
		},
		openURL: func(url string) error {
			r.opened = append(r.opened, url)
			return r.urlErr
		},
	}
}

func TestOpenUsesBrowserEnv(t *testing.T) {
	r := &recorder{}
	if err := r.system("/usr/bin/helper").Open(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(r.ran) != 1 || r.ran[0] != "/usr/bin/helper https://example.com" {
		t.Errorf("ran = %v", r.ran)
	}
	if len(r.opened) != 0 {
		t.Errorf("default browser should not be used, opened = %v", r.opened)
	}
}

func TestOpenFallsBack(t *testing.T) {
	r := &recorder{runErr: errors.New("exit 1")}
	if err := r.system("/usr/bin/helper").Open(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(r.opened) != 1 {
		t.Errorf("opened = %v, want fallback", r.opened)
	}
}

func TestOpenWithoutEnv(t *testing.T) {
	r := &recorder{}
	if err := r.system("").Open(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(r.ran) != 0 || len(r.opened) != 1 {
		t.Errorf("ran = %v opened = %v", r.ran, r.opened)
	}
}

func TestOpenError(t *testing.T) {
	r := &recorder{urlErr: errors.New("no display")}
	if err := r.system("").Open(context.Background(), "https://example.com"); err == nil {
		t.Error("Open() should return the browser error")
	}
}

// File: control/reactor_config_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadReactorConfigDefaults(t *testing.T) {
	cfg, err := LoadReactorConfig(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SelectInterval != time.Second {
		t.Errorf("SelectInterval = %v, want 1s", cfg.SelectInterval)
	}
	if cfg.ShutdownGracePeriod != 2*time.Second {
		t.Errorf("ShutdownGracePeriod = %v, want 2s", cfg.ShutdownGracePeriod)
	}
	if !cfg.TCPNoDelay {
		t.Errorf("TCPNoDelay = false, want true")
	}
	if cfg.SoLinger != -1 {
		t.Errorf("SoLinger = %d, want -1", cfg.SoLinger)
	}
}

func TestLoadReactorConfigOverrides(t *testing.T) {
	v := viper.New()
	v.Set("io_thread_count", 4)
	v.Set("select_interval", "250ms")
	v.Set("so_timeout", "30s")
	v.Set("tcp_no_delay", false)

	cfg, err := LoadReactorConfig(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.IOThreadCount != 4 {
		t.Errorf("IOThreadCount = %d, want 4", cfg.IOThreadCount)
	}
	if cfg.SelectInterval != 250*time.Millisecond {
		t.Errorf("SelectInterval = %v, want 250ms", cfg.SelectInterval)
	}
	if cfg.SoTimeout != 30*time.Second {
		t.Errorf("SoTimeout = %v, want 30s", cfg.SoTimeout)
	}
	if cfg.TCPNoDelay {
		t.Errorf("TCPNoDelay = true, want false")
	}
}

func TestLoadReactorConfigRejectsBadDuration(t *testing.T) {
	v := viper.New()
	v.Set("select_interval", "not-a-duration")
	if _, err := LoadReactorConfig(v); err == nil {
		t.Fatal("expected an error for an invalid duration string")
	}
}

// File: control/reactor_config.go
// Author: momentics <momentics@gmail.com>
//
// LoadReactorConfig reads §6's ReactorConfig knobs from a viper instance
// (file, env, flags — whatever the caller has configured) and decodes them
// into reactor.Config via mapstructure, the same combination the rest of
// the pack reaches for (github.com/spf13/viper + github.com/mitchellh/mapstructure).

package control

import (
	"fmt"
	"runtime"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/momentics/ioreactor/reactor"
)

// reactorConfigDefaults holds the default for every viper key
// LoadReactorConfig understands (named after §6's ReactorConfig fields),
// except worker_cpu_pinning, which defaults to empty.
var reactorConfigDefaults = map[string]any{
	"io_thread_count":       0, // 0 (or less) => one worker per logical CPU
	"select_interval":       "1s",
	"shutdown_grace_period": "2s",
	"so_timeout":            "0s",
	"tcp_no_delay":          true,
	"so_keepalive":          true,
	"so_linger":             -1,
	"snd_buf_size":          0,
	"rcv_buf_size":          0,
}

// rawReactorConfig mirrors reactor.Config with duration fields as strings,
// since viper/mapstructure decode duration strings more reliably than raw
// nanosecond integers pulled from YAML/env sources.
type rawReactorConfig struct {
	IOThreadCount       int      `mapstructure:"io_thread_count"`
	SelectInterval      string   `mapstructure:"select_interval"`
	ShutdownGracePeriod string   `mapstructure:"shutdown_grace_period"`
	SoTimeout           string   `mapstructure:"so_timeout"`
	TCPNoDelay          bool     `mapstructure:"tcp_no_delay"`
	SoKeepAlive         bool     `mapstructure:"so_keepalive"`
	SoLinger            int      `mapstructure:"so_linger"`
	SndBufSize          int      `mapstructure:"snd_buf_size"`
	RcvBufSize          int      `mapstructure:"rcv_buf_size"`
	WorkerCPUPinning    []int    `mapstructure:"worker_cpu_pinning"`
}

// LoadReactorConfig decodes v into a *reactor.Config, applying
// reactorConfigDefaults for any key the caller's sources did not set.
func LoadReactorConfig(v *viper.Viper) (*reactor.Config, error) {
	if v == nil {
		v = viper.New()
	}
	for k, val := range reactorConfigDefaults {
		v.SetDefault(k, val)
	}

	var raw rawReactorConfig
	if err := v.Unmarshal(&raw, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("reactor config: unmarshal: %w", err)
	}

	selectInterval, err := time.ParseDuration(raw.SelectInterval)
	if err != nil {
		return nil, fmt.Errorf("reactor config: select_interval: %w", err)
	}
	gracePeriod, err := time.ParseDuration(raw.ShutdownGracePeriod)
	if err != nil {
		return nil, fmt.Errorf("reactor config: shutdown_grace_period: %w", err)
	}
	soTimeout, err := time.ParseDuration(raw.SoTimeout)
	if err != nil {
		return nil, fmt.Errorf("reactor config: so_timeout: %w", err)
	}

	cfg := &reactor.Config{
		IOThreadCount:       raw.IOThreadCount,
		SelectInterval:      selectInterval,
		ShutdownGracePeriod: gracePeriod,
		SoTimeout:           soTimeout,
		TCPNoDelay:          raw.TCPNoDelay,
		SoKeepAlive:         raw.SoKeepAlive,
		SoLinger:            raw.SoLinger,
		SndBufSize:          raw.SndBufSize,
		RcvBufSize:          raw.RcvBufSize,
		WorkerCPUPinning:    raw.WorkerCPUPinning,
	}
	if cfg.IOThreadCount < 1 {
		cfg.IOThreadCount = runtime.NumCPU()
	}
	return cfg, nil
}

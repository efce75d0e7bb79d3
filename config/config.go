/*Package config holds the runtime settings of the gateway. Settings load from
a YAML file, are clamped to the ranges the DMX output can honor and can be
changed at runtime through a shared Store.*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Value bounds. Universe 0 is reserved in both Art-Net and sACN and a DMX
// frame carries at most 512 channels.
const (
	UniverseMin = 1
	UniverseMax = 32767
	ChannelsMin = 1
	ChannelsMax = 512
	DelayMin    = 1
	DelayMax    = 1000
)

// Protocol selects the inbound listener.
const (
	ProtocolArtNet = "artnet"
	ProtocolSACN   = "sacn"
)

// Output selects the outbound encoder.
const (
	OutputUART   = "uart"
	OutputStream = "stream"
)

// Break selects how the DMX break is generated on the UART output.
const (
	BreakBaud = "baud"
	BreakGPIO = "gpio"
)

// Config is the whole runtime configuration.
type Config struct {
	Universe uint16 `yaml:"universe" json:"universe"`
	Channels int    `yaml:"channels" json:"channels"`
	//Delay is the pause between two frames in milliseconds.
	Delay    int    `yaml:"delay" json:"delay"`
	Protocol string `yaml:"protocol" json:"protocol"`
	Listen   string `yaml:"listen" json:"listen"`

	Output string `yaml:"output" json:"output"`
	//Device is the serial device for the uart output or the file the stream
	//output writes sample words to.
	Device string `yaml:"device" json:"device"`

	Break    string `yaml:"break" json:"break"`
	GPIOChip string `yaml:"gpio-chip" json:"gpioChip"`
	GPIOLine int    `yaml:"gpio-line" json:"gpioLine"`

	//SafeTiming pads the sample stream with extra idle words for fixtures
	//that need a longer mark before break.
	SafeTiming bool `yaml:"safe-timing" json:"safeTiming"`

	//Capture is a WAV file path; empty disables waveform capture.
	Capture string `yaml:"capture" json:"capture"`
	Monitor bool   `yaml:"monitor" json:"monitor"`

	HTTP     string `yaml:"http" json:"http"`
	Hostname string `yaml:"hostname" json:"hostname"`
}

// Default returns the settings used when no file exists yet.
func Default() Config {
	return Config{
		Universe: 1,
		Channels: 512,
		Delay:    25,
		Protocol: ProtocolArtNet,
		Output:   OutputUART,
		Device:   "/dev/ttyAMA0",
		Break:    BreakBaud,
		GPIOChip: "gpiochip0",
		GPIOLine: 18,
		HTTP:     ":8080",
		Hostname: "artnet-dmx",
	}
}

// Load reads the configuration file at path. A missing file is not an error:
// the defaults are written there and returned. Out-of-range values are
// clamped rather than rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := Save(path, cfg); err != nil {
			return cfg, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Clamp()
	return cfg, nil
}

// Save writes the configuration to path atomically.
func Save(path string, cfg Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Clamp forces every field into its valid range.
func (c *Config) Clamp() {
	c.Universe = clampUint16(c.Universe, UniverseMin, UniverseMax)
	c.Channels = clampInt(c.Channels, ChannelsMin, ChannelsMax)
	c.Delay = clampInt(c.Delay, DelayMin, DelayMax)
	if c.Protocol != ProtocolSACN {
		c.Protocol = ProtocolArtNet
	}
	if c.Output != OutputStream {
		c.Output = OutputUART
	}
	if c.Break != BreakGPIO {
		c.Break = BreakBaud
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampUint16(v uint16, lo, hi uint16) uint16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package hal

import (
	"kfs/device/tty"
	"kfs/device/video/console"
)

// Boot command line keys understood by the kernel.
const (
	keyScrollback = "kfs.scrollback"
	keyColor      = "kfs.color"
	keyBanner     = "kfs.banner"
)

// Config holds the console settings that can be changed from the boot
// command line.
type Config struct {
	// Scrollback is the number of lines each terminal tab retains.
	Scrollback uint32

	// Color is the initial foreground color of the terminal.
	Color console.Color

	// Banner controls whether the welcome banner is printed.
	Banner bool
}

// DefaultConfig returns the settings used when the boot command line does not
// override them.
func DefaultConfig() Config {
	return Config{
		Scrollback: tty.DefaultScrollback,
		Color:      console.White,
		Banner:     true,
	}
}

// ParseConfig applies the recognized keys of a parsed boot command line on
// top of DefaultConfig. Malformed values are ignored.
func ParseConfig(cmdLine map[string]string) Config {
	cfg := DefaultConfig()

	if v, ok := cmdLine[keyScrollback]; ok {
		if n, ok := parseUint32(v); ok && n > 0 {
			cfg.Scrollback = n
		}
	}

	if v, ok := cmdLine[keyColor]; ok {
		if c, ok := console.ColorByName(v); ok && c != console.Black {
			cfg.Color = c
		}
	}

	if cmdLine[keyBanner] == "off" {
		cfg.Banner = false
	}

	return cfg
}

func parseUint32(s string) (uint32, bool) {
	if len(s) == 0 || len(s) > 9 {
		return 0, false
	}

	var v uint32
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		v = v*10 + uint32(s[i]-'0')
	}
	return v, true
}

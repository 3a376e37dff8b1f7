package app

import (
	"gfx.cafe/gfx/protocolcontrol/lib/util/dur"
)

type Config struct {
	// Listen holds caddy network addresses such as ":25565" or "unix//run/protocolcontrol.sock".
	Listen        []string       `json:"listen" env:"LISTEN" envSeparator:","`
	Workers       int            `json:"workers,omitempty" env:"WORKERS"`
	StatLogPeriod dur.Duration   `json:"stat_log_period,omitempty" env:"STAT_LOG_PERIOD"`
	Chat          ChatConfig     `json:"chat" envPrefix:"CHAT_"`
	Tracing       *TracingConfig `json:"tracing,omitempty"`
}

type ChatConfig struct {
	// Log writes every chat line to the app's logger, including cancelled ones.
	Log     bool           `json:"log,omitempty" env:"LOG"`
	Prefix  string         `json:"prefix,omitempty" env:"PREFIX"`
	Filters []FilterConfig `json:"filters,omitempty"`
}

// FilterConfig cancels chat lines containing any of Words, compared case insensitively. Reply, if set, is sent back
// to the sender as a system message.
type FilterConfig struct {
	Words []string `json:"words"`
	Reply string   `json:"reply,omitempty"`
}

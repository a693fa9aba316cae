package command

import (
	"surprise-service/internal/common/config"
)

const (
	DefaultFooter = "Generated by Surprise service"
	DefaultColor  = "#36a64f"
)

type Config struct {
	Token string
	// Command is the slash command the app is installed under. Invocations
	// under another name are still served.
	Command string
	Footer  string
	Color   string
}

func NewConfig(cfg config.SlackConfig) *Config {
	return &Config{
		Token:   cfg.Token,
		Command: cfg.Command,
		Footer:  DefaultFooter,
		Color:   DefaultColor,
	}
}

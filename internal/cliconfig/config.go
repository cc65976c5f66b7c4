// Package cliconfig loads reze_cli_config.json, the CLI shell's own
// forward-compatible config document, plus the *.cli.json command
// definitions and reze.cli_mode.json mode tree it points at.
package cliconfig

import (
	"encoding/json"
	"os"

	"github.com/routerd/routerd/internal/logger"
)

// Remote is one named remote endpoint (e.g. "config", "exec").
type Remote struct {
	Transport  string `json:"transport"`
	Socket     string `json:"socket"`
	ServerIP   string `json:"server_ip"`
	ServerPort int    `json:"server_port"`
	Protocol   string `json:"protocol"`
	Prefix     string `json:"prefix"`
}

// UDSSocketFile returns the socket path only when this remote's transport is
// "unix".
func (r Remote) UDSSocketFile() (string, bool) {
	if r.Transport == "unix" && r.Socket != "" {
		return r.Socket, true
	}
	return "", false
}

// Config is the reze_cli_config.json document. A forward-compatible reader,
// not a strict schema: unknown top-level and per-remote keys are warned
// about, never rejected, so a newer config document still loads against an
// older binary.
type Config struct {
	Debug         bool              `json:"debug"`
	CliDefinition string            `json:"cli_definition"`
	Remote        map[string]Remote `json:"remote"`
}

// Default returns the built-in defaults used when no config file is found.
func Default() *Config {
	return &Config{
		Debug:         false,
		CliDefinition: "./json",
		Remote:        map[string]Remote{},
	}
}

var knownTopLevelKeys = map[string]bool{
	"debug": true, "cli_definition": true, "remote": true,
	"description": true, "config_schema_version": true,
}

var knownRemoteKeys = map[string]bool{
	"transport": true, "socket": true, "server_ip": true,
	"server_port": true, "protocol": true, "prefix": true, "authentication": true,
}

// Load reads and parses path, warning (not failing) on unrecognized keys.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a reze_cli_config.json document, warning on unknown keys at
// both the top level and within each remote entry.
func Parse(data []byte) (*Config, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cfg := Default()

	for key, value := range raw {
		if !knownTopLevelKeys[key] {
			logger.Warn("unknown keyword in global cli config", "key", key)
			continue
		}
		switch key {
		case "debug":
			_ = json.Unmarshal(value, &cfg.Debug)
		case "cli_definition":
			_ = json.Unmarshal(value, &cfg.CliDefinition)
		case "remote":
			var remotes map[string]map[string]json.RawMessage
			if err := json.Unmarshal(value, &remotes); err != nil {
				return nil, err
			}
			cfg.Remote = make(map[string]Remote, len(remotes))
			for name, fields := range remotes {
				cfg.Remote[name] = parseRemote(fields)
			}
		}
	}

	return cfg, nil
}

func parseRemote(fields map[string]json.RawMessage) Remote {
	var r Remote
	for key, value := range fields {
		if !knownRemoteKeys[key] {
			logger.Warn("unknown keyword in remote cli config", "key", key)
			continue
		}
		switch key {
		case "transport":
			_ = json.Unmarshal(value, &r.Transport)
		case "socket":
			_ = json.Unmarshal(value, &r.Socket)
		case "server_ip":
			_ = json.Unmarshal(value, &r.ServerIP)
		case "server_port":
			_ = json.Unmarshal(value, &r.ServerPort)
		case "protocol":
			_ = json.Unmarshal(value, &r.Protocol)
		case "prefix":
			_ = json.Unmarshal(value, &r.Prefix)
		}
	}
	return r
}

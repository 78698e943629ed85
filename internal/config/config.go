// Package config loads the bot's TOML configuration and compiles it into
// an immutable Runtime snapshot. A snapshot is never mutated in place:
// reload builds a whole new one, and a failed build leaves the previous
// snapshot active.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const defaultConfigPath = "config/bot.toml"

// Load reads and parses the configuration file from the specified path.
// If path is empty, it uses the default path.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found at %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrCreate attempts to load the configuration file, and if it doesn't
// exist, writes a default configuration file and returns the default.
func LoadOrCreate(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Configuration file not found. Creating default configuration at %s\n", path)

		defaultCfg := DefaultConfig()
		if err := CreateDefault(path, defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to create default configuration: %w", err)
		}
		return defaultCfg, nil
	}

	return Load(path)
}

// CreateDefault writes cfg as TOML to path, creating directories as needed.
func CreateDefault(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults for Libera.Chat
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:  "irc.libera.chat",
			Port:     6697,
			TLS:      true,
			Nickname: "marvin",
			Username: "marvin",
			Realname: "Marvin the channel keeper",
		},
		Bot: BotConfig{
			Channel:         "#yourchannel",
			PrivilegedNicks: map[string]bool{},
			URLRegex:        `(https?://[^\s'">\)]+)`,
			URLLogDB:        "data/urls.db",
			URLBlacklist:    []string{},
		},
		Commands: CommandsConfig{
			DumpACL: "dumpacl",
			Invite:  "invite",
			Join:    "join",
			ModeO:   "op",
			ModeV:   "voice",
			Nick:    "nick",
			Reload:  "reload",
			Say:     "say",
		},
		Channels: ChannelsConfig{
			URLFetch:       map[string]bool{"*": true},
			URLCmd:         map[string]bool{"*": false},
			URLMut:         map[string]bool{"*": false},
			URLLog:         map[string]bool{"*": true},
			URLDupComplain: map[string]bool{"*": true},
			URLDupExpire:   map[string]int64{"*": 7},
			URLDupTimezone: map[string]string{"*": "UTC"},
		},
		ACL: ACLConfig{},
	}
}

// validate checks the decoded schema for fields the bot cannot run without.
func validate(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if cfg.Server.Nickname == "" {
		return fmt.Errorf("server.nickname is required")
	}
	if cfg.Bot.Channel == "" {
		return fmt.Errorf("bot.channel is required")
	}
	if cfg.Bot.URLRegex == "" {
		return fmt.Errorf("bot.url_regex is required")
	}
	return nil
}

// expandPath expands a leading ~ and any $VAR references in a path.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + strings.TrimPrefix(path, "~")
		}
	}
	return os.ExpandEnv(path)
}

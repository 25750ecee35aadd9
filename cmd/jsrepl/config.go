package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the optional TOML configuration file.
//
//	[engine]
//	wasm = "engine.wasm"      # omit to use the built-in reference engine
//	memory_limit_pages = 256  # 64KB pages, 0 = runtime default
//
//	[repl]
//	prompt = "js> "
//	history = 500
//	strict = false
//
//	[modules]
//	sqlite = true
type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	REPL    REPLConfig    `toml:"repl"`
	Modules ModulesConfig `toml:"modules"`
}

type EngineConfig struct {
	Wasm             string `toml:"wasm"`
	MemoryLimitPages uint32 `toml:"memory_limit_pages"`
}

type REPLConfig struct {
	Prompt  string `toml:"prompt"`
	History int    `toml:"history"`
	Strict  bool   `toml:"strict"`
}

type ModulesConfig struct {
	Sqlite bool `toml:"sqlite"`
}

func defaultConfig() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:  "js> ",
			History: 500,
		},
		Modules: ModulesConfig{
			Sqlite: true,
		},
	}
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Package config handles configuration loading for memoui.
//
// # Overview
//
// Configuration is loaded from a file with environment variable expansion.
// Missing values get defaults, then the result is validated.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from MEMOUI_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/memoui/config.yaml
//  3. ~/.config/memoui/config.yaml
//
// The format follows the file extension:
//
//   - .yaml / .yml: YAML
//   - .toml: TOML
//   - .json / .jsonc: JSON with comments and trailing commas
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	database:
//	  path: "${HOME}/notes/memoui.db"
//
// MEMOUI_DB_PATH, when set, overrides database.path.
//
// # Configuration Sections
//
// Database:
//
//	database:
//	  path: "~/.local/share/memoui/memoui.db"
//
// Autosave:
//
//	autosave:
//	  interval: "2s"        # pause between save cycles
//	  escalate_after: 10    # consecutive failures before warning; 0 = never
//
// Slides (build-time tab layout, not part of the saved notes):
//
//	slides:
//	  tabs: ["Home", "Work", "Misc"]
//	  require_selection: true
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.Load("/home/me/.config/memoui/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

// Package config provides the configuration for the key reader.
//
// Settings come from three places, later ones overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML file
//  3. KEYREADER_ environment variables
//
// # File Format
//
//	[input]
//	escape_timeout = "30ms"
//	sequence_timeout = "1s"
//	query_timeout = "2s"
//	max_sequence_bytes = 256
//	default_mode = "default"
//
//	[logging]
//	level = "debug"
//	file = "/tmp/keyreader.log"
//
//	[bindings]
//	preset = "vi"
//	files = ["bindings.toml"]
//	watch = true
//
//	[commands]
//	script = "commands.lua"
//
// Durations are strings accepted by time.ParseDuration. Unknown keys are
// rejected.
//
// # Environment Variables
//
//	KEYREADER_ESCAPE_TIMEOUT, KEYREADER_SEQUENCE_TIMEOUT,
//	KEYREADER_QUERY_TIMEOUT, KEYREADER_SCRIPT_TIMEOUT   durations, or milliseconds
//	KEYREADER_MAX_SEQUENCE_BYTES                        integer
//	KEYREADER_DEFAULT_MODE, KEYREADER_PRESET            names
//	KEYREADER_LOG_LEVEL, KEYREADER_LOG_FILE
//	KEYREADER_BINDINGS                                  path list
//	KEYREADER_WATCH                                     boolean
//	KEYREADER_SCRIPT                                    Lua file
package config

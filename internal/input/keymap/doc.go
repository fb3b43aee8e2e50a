// Package keymap holds the binding table: key sequences mapped to command
// lists, scoped by mode.
//
// # Key Concepts
//
// Binding: a key sequence, the mode it is active in, the commands it runs,
// and optionally the mode to switch to afterwards.
//
// Table: every binding, organized as one prefix tree per mode. The resolver
// asks the table two things about the keys seen so far: is there an exact
// binding, and could a longer one still match.
//
// Keymap: a named list of binding specs as written in a binding file or a
// preset, before parsing.
//
// # Preset and User Bindings
//
// Bindings are either presets or user bindings. Both live in the same table;
// registering the same (mode, sequence) again replaces the earlier binding
// regardless of kind. Loading a preset erases only preset bindings.
//
// # Binding Files
//
// Binding files are TOML, JSON or YAML:
//
//	name = "mine"
//	mode = "default"
//
//	[[bindings]]
//	keys = "ctrl-x ctrl-s"
//	commands = ["save"]
//
//	[[bindings]]
//	mode = "insert"
//	keys = "escape"
//	commands = ["repaint-mode"]
//	sets_mode = "default"
//
// Watcher rebuilds the table when binding files change.
package keymap

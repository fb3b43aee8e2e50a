package keymap

import (
	"errors"
	"fmt"
	"sort"
)

// Preset names.
const (
	PresetEmacs = "emacs"
	PresetVi    = "vi"
	PresetNone  = "none"
)

// Vi modes.
const (
	ModeInsert  = "insert"
	ModeVisual  = "visual"
	ModeReplace = "replace_one"
)

// ErrUnknownPreset is returned for a preset name that does not exist.
var ErrUnknownPreset = errors.New("unknown binding preset")

var presets = map[string]func() []*Keymap{
	PresetEmacs: func() []*Keymap { return []*Keymap{EmacsKeymap()} },
	PresetVi:    ViKeymaps,
	PresetNone:  func() []*Keymap { return nil },
}

// PresetNames returns the available preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the keymaps of a named preset.
func Preset(name string) ([]*Keymap, error) {
	fn, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return fn(), nil
}

// LoadPreset replaces the preset bindings of every mode the preset uses
// with the preset. User bindings are kept.
func LoadPreset(t *Table, name string) error {
	keymaps, err := Preset(name)
	if err != nil {
		return err
	}
	for _, m := range t.Modes() {
		t.EraseMode(m, true)
	}
	for _, km := range keymaps {
		if err := km.Apply(t); err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
	}
	return nil
}

// commonBindings are shared by the emacs preset and vi insert mode.
func commonBindings(km *Keymap) *Keymap {
	return km.
		// Movement
		Add("left", "backward-char").
		Add("right", "forward-char").
		Add("up", "up-or-search").
		Add("down", "down-or-search").
		Add("home", "beginning-of-line").
		Add("end", "end-of-line").
		Add("ctrl-left", "backward-word").
		Add("ctrl-right", "forward-word").
		Add("alt-left", "prevd-or-backward-word").
		Add("alt-right", "nextd-or-forward-word").
		Add("alt-up", "history-token-search-backward").
		Add("alt-down", "history-token-search-forward").

		// Editing
		Add("backspace", "backward-delete-char").
		Add("shift-backspace", "backward-delete-char").
		Add("delete", "delete-char").
		Add("ctrl-w", "backward-kill-path-component").
		Add("ctrl-backspace", "backward-kill-word").
		Add("alt-backspace", "backward-kill-word").
		Add("alt-delete", "kill-word").

		// Command line
		Add("enter", "execute").
		Add("ctrl-j", "execute").
		Add("alt-enter", "insert-line-over").
		Add("tab", "complete").
		Add("shift-tab", "complete-and-search").
		Add("ctrl-c", "cancel-commandline").
		Add("ctrl-d", "delete-or-exit").
		Add("ctrl-l", "clear-screen").
		Add("ctrl-r", "history-pager").
		Add("ctrl-s", "pager-toggle-search").
		Add("ctrl-z", "undo").
		Add("ctrl-_", "undo").
		Add("alt-/", "redo").
		Add("alt-h", "__fish_man_page").
		Add("alt-l", "__fish_list_current_token").
		Add("alt-p", "__fish_paginate").
		Add("alt-s", "__fish_prepend_sudo").
		Add("alt-w", "__fish_whatis_current_token").
		Add("alt-e", "edit_command_buffer").
		Add("alt-v", "edit_command_buffer").
		Add("alt-o", "__fish_preview_current_file").
		Add("ctrl-space", "insert-space-literal")
}

// EmacsKeymap returns the emacs-style preset for the default mode.
func EmacsKeymap() *Keymap {
	return commonBindings(NewKeymap("preset-emacs").ForMode(DefaultMode).AsPreset()).
		Add("escape", "cancel").
		Add("ctrl-a", "beginning-of-line").
		Add("ctrl-e", "end-of-line").
		Add("ctrl-b", "backward-char").
		Add("ctrl-f", "forward-char").
		Add("ctrl-p", "up-or-search").
		Add("ctrl-n", "down-or-search").
		Add("ctrl-h", "backward-delete-char").
		Add("ctrl-k", "kill-line").
		Add("ctrl-u", "backward-kill-line").
		Add("ctrl-y", "yank").
		Add("alt-y", "yank-pop").
		Add("ctrl-t", "transpose-chars").
		Add("alt-t", "transpose-words").
		Add("alt-b", "backward-word").
		Add("alt-f", "forward-word").
		Add("alt-d", "kill-word").
		Add("alt-u", "upcase-word").
		Add("alt-c", "capitalize-word").
		Add("alt-.", "history-token-search-backward").
		Add("alt-<", "beginning-of-buffer").
		Add("alt->", "end-of-buffer").
		Add("ctrl-x ctrl-e", "edit_command_buffer").
		Add("ctrl-x ctrl-x", "swap-selection-start-stop").
		Add("ctrl-x ctrl-u", "upcase-selection").
		Add("ctrl-x ctrl-l", "downcase-selection")
}

// ViKeymaps returns the vi-style preset: a command mode (default) and an
// insert mode.
func ViKeymaps() []*Keymap {
	insert := commonBindings(NewKeymap("preset-vi-insert").ForMode(ModeInsert).AsPreset()).
		AddSpec(Spec{Keys: "escape", Commands: []string{"backward-char", "repaint-mode"}, SetsMode: DefaultMode}).
		AddSpec(Spec{Keys: "ctrl-[", Commands: []string{"backward-char", "repaint-mode"}, SetsMode: DefaultMode}).
		Add("ctrl-a", "beginning-of-line").
		Add("ctrl-e", "end-of-line").
		Add("ctrl-u", "backward-kill-line").
		Add("ctrl-h", "backward-delete-char")

	toInsert := func(keys string, commands ...string) Spec {
		return Spec{Keys: keys, Commands: append(commands, "repaint-mode"), SetsMode: ModeInsert}
	}

	normal := NewKeymap("preset-vi-normal").ForMode(DefaultMode).AsPreset().
		// Entering insert mode
		AddSpec(toInsert("i")).
		AddSpec(toInsert("a", "forward-single-char")).
		AddSpec(toInsert("I", "beginning-of-line")).
		AddSpec(toInsert("A", "end-of-line")).
		AddSpec(toInsert("o", "end-of-line", "insert-line-under")).
		AddSpec(toInsert("O", "beginning-of-line", "insert-line-over")).
		AddSpec(toInsert("c c", "kill-whole-line")).
		AddSpec(toInsert("c w", "kill-word")).
		AddSpec(toInsert("S", "kill-whole-line")).
		AddSpec(Spec{Keys: "v", Commands: []string{"begin-selection", "repaint-mode"}, SetsMode: ModeVisual}).
		AddSpec(Spec{Keys: "r", Commands: []string{"repaint-mode"}, SetsMode: ModeReplace}).

		// Movement
		Add("h", "backward-char").
		Add("l", "forward-char").
		Add("j", "down-or-search").
		Add("k", "up-or-search").
		Add("w", "forward-word").
		Add("W", "forward-bigword").
		Add("b", "backward-word").
		Add("B", "backward-bigword").
		Add("e", "forward-single-char", "forward-word", "backward-char").
		Add("0", "beginning-of-line").
		Add("^", "beginning-of-line").
		Add("$", "end-of-line").
		Add("g g", "beginning-of-buffer").
		Add("G", "end-of-buffer").
		Add("left", "backward-char").
		Add("right", "forward-char").
		Add("up", "up-or-search").
		Add("down", "down-or-search").

		// Editing
		Add("x", "delete-char").
		Add("X", "backward-delete-char").
		Add("d d", "kill-whole-line").
		Add("d w", "kill-word").
		Add("d b", "backward-kill-word").
		Add("d $", "kill-line").
		Add("d 0", "backward-kill-line").
		Add("D", "kill-line").
		Add("C", "kill-line", "repaint-mode").
		Add("p", "forward-char", "yank").
		Add("P", "yank").
		Add("u", "undo").
		Add("ctrl-r", "redo").
		Add("~", "togglecase-char", "forward-single-char").

		// Command line
		Add("enter", "execute").
		Add("ctrl-j", "execute").
		Add("ctrl-c", "cancel-commandline").
		Add("ctrl-d", "delete-or-exit").
		Add("ctrl-l", "clear-screen").
		Add("escape", "cancel")

	return []*Keymap{normal, insert}
}

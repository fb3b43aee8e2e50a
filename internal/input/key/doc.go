// Package key provides the normalized key identity used by the input system.
//
// A Key is either a character (code point plus modifiers) or a named special
// key (arrows, function keys, enter, escape, ...). Keys are plain values and
// compare with ==, so they can be used directly as map keys and in prefix
// trees.
//
// # Key Specifications
//
// The canonical textual form is dash separated and round-trips through Parse:
//
//   - Characters: "a", "A", "1", "-", "space", "comma"
//   - Named keys: "enter", "escape", "tab", "backspace", "up", "f5"
//   - With modifiers: "ctrl-x", "alt-left", "ctrl-alt-shift-f5", "alt-minus"
//
// Parse also accepts "Ctrl+S" and Vim-style "<C-s>", "<CR>", "<Esc>".
//
// # Sequences
//
// A Sequence is an ordered []Key. ParseSequence reads space or comma
// separated specs ("ctrl-x ctrl-s") and runs of plain characters ("gg").
package key

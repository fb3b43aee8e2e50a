// Package decode turns raw terminal input bytes into keys and terminal replies.
//
// A Decoder is stateless with respect to the byte stream: the caller hands it
// the run of undecoded bytes at the head of its buffer and gets back either a
// complete result (how many bytes were used and what they mean) or NeedMore
// when the bytes are a valid prefix of a longer escape sequence. Deciding how
// long to wait for the rest belongs to the caller; when it gives up, Flush
// degrades the bytes to literal keys so nothing is ever dropped.
//
// Recognized input:
//
//   - Control bytes: 0x00 ctrl-space, 0x01-0x1A ctrl-letter, tab, enter,
//     backspace (0x7F), ctrl-h (0x08), ctrl-j (\n)
//   - UTF-8 characters; invalid bytes map to U+F600+byte
//   - ESC followed by a key: alt-modified key
//   - CSI and SS3 legacy keys, xterm modifier parameters (CSI 1;5A)
//   - kitty keyboard protocol (CSI code;mods u)
//   - Replies: primary device attributes, cursor position, XTVERSION,
//     kitty keyboard flags, OSC 11 background color
package decode

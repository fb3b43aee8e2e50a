// Package input resolves terminal input into bound commands.
//
// The pieces, bottom up:
//
//   - source: where bytes come from (terminal, pipe, scripted test input).
//   - decode: turns bytes into keys and terminal replies.
//   - queue: buffers events with a commit cursor and a peek cursor.
//   - keymap: the binding table, scoped by mode.
//   - mode: the current binding mode.
//   - query: terminal capability queries and their replies.
//
// This package ties them together. A Resolver runs one attempt at a time:
// it peeks keys from the queue, asks the table whether they complete a
// binding or could still grow into a longer one, and waits up to the
// sequence timeout while a longer binding is possible. The longest exact
// match wins regardless of registration order. Without any match the first
// key self-inserts and the rest are left for the next attempt.
//
// A Session runs the resolver in a loop and hands each Resolution to a
// Dispatcher.
//
// # Usage
//
//	q := queue.New(src)
//	table := keymap.NewTable()
//	_ = keymap.LoadPreset(table, keymap.PresetEmacs)
//
//	r := input.NewResolver(q, table, nil, input.DefaultConfig())
//	s := input.NewSession(r, dispatcher)
//	err := s.Run(ctx)
package input

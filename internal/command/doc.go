// Package command runs the commands that bindings resolve to.
//
// A Registry maps command names to handlers and implements
// input.Dispatcher: each command line of a resolved binding is split into
// words and run in order. Builtins supplies a small single-line editor so
// the common preset commands do something observable, and LuaExecutor lets
// scripts define further commands and bindings.
package command

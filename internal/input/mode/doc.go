// Package mode tracks the current binding mode.
//
// Bindings are scoped by mode: the resolver only considers bindings of the
// current mode. A binding can switch modes when it fires, which is how
// vi-style command and insert modes are built out of plain bindings.
//
// Mode names are free-form. There is no registry of modes; a mode exists
// as soon as a binding refers to it.
package mode

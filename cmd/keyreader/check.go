package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielrainer/fish-shell/internal/input/keymap"
)

var checkPreset string

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Validate binding files",
	Long: `Loads binding files and reports errors and shadowed sequences: bindings
that are a strict prefix of longer bindings in the same mode. Typing a
shadowed sequence makes the resolver wait for more input before running it.

With --preset the files are checked on top of that preset.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkPreset, "preset", keymap.PresetNone, "Preset to check the files against")
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	table := keymap.NewTable()
	if err := keymap.LoadPreset(table, checkPreset); err != nil {
		return err
	}

	loader := keymap.NewLoader(keymap.WithLoaderLogger(logger.Named("keymap")))
	loadErr := loader.LoadInto(table, args...)
	if loadErr != nil {
		for _, err := range unwrapJoined(loadErr) {
			fmt.Fprintln(out, "error:", err)
		}
	}

	shadowed := 0
	for _, mode := range table.Modes() {
		for _, s := range table.Shadowed(mode) {
			if !s.Binding.User && allPreset(s.Longer) {
				continue
			}
			shadowed++
			fmt.Fprintf(out, "waits: %s [%s] is a prefix of %d longer binding(s), e.g. %s\n",
				s.Binding.Sequence, mode, len(s.Longer), s.Longer[0].Sequence)
		}
	}

	fmt.Fprintf(out, "%d file(s), %d binding(s), %d shadowed\n", len(args), table.Len(), shadowed)
	if loadErr != nil {
		return errors.New("binding files have errors")
	}
	return nil
}

func allPreset(bs []*keymap.Binding) bool {
	for _, b := range bs {
		if b.User {
			return false
		}
	}
	return true
}

// unwrapJoined flattens errors.Join trees.
func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, unwrapJoined(e)...)
		}
		return out
	}
	return []error{err}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielrainer/fish-shell/internal/input/keymap"
)

var listPreset string

var listCmd = &cobra.Command{
	Use:   "list [FILE...]",
	Short: "Print the bindings of a preset and binding files as bind commands",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listPreset, "preset", "", "Preset (default from config)")
}

func runList(cmd *cobra.Command, args []string) error {
	preset := cfg.Bindings.Preset
	if listPreset != "" {
		preset = listPreset
	}

	table := keymap.NewTable()
	if err := keymap.LoadPreset(table, preset); err != nil {
		return fmt.Errorf("%w (available: %v)", err, keymap.PresetNames())
	}
	files := append(cfg.Bindings.Files, args...)
	if err := keymap.NewLoader().LoadInto(table, files...); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, mode := range table.Modes() {
		for _, b := range table.Bindings(mode) {
			fmt.Fprintln(out, b)
		}
	}
	return nil
}

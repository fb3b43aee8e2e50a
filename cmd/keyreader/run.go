package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/danielrainer/fish-shell/internal/app"
)

var (
	runBindings []string
	runScript   string
	runPreset   string
	runWatch    bool
	runEcho     bool
	runStdin    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Read keys and run the commands they are bound to",
	Long: `Starts an interactive loop on a one-line command buffer. Typed characters
insert themselves, bound keys run their commands, enter prints the line.
ctrl-d on an empty line, or end of input, exits.`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	runCmd.Flags().StringSliceVarP(&runBindings, "bindings", "b", nil, "Binding files (TOML, JSON or YAML)")
	runCmd.Flags().StringVar(&runScript, "script", "", "Lua file defining commands")
	runCmd.Flags().StringVar(&runPreset, "preset", "", "Binding preset: emacs, vi or none")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "Reload binding files when they change")
	runCmd.Flags().BoolVarP(&runEcho, "echo", "e", true, "Print every resolution")
	runCmd.Flags().BoolVar(&runStdin, "stdin", false, "Read stdin even when it is a terminal")
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	if len(runBindings) > 0 {
		cfg.Bindings.Files = append(cfg.Bindings.Files, runBindings...)
	}
	if runScript != "" {
		cfg.Commands.Script = runScript
	}
	if runPreset != "" {
		cfg.Bindings.Preset = runPreset
	}
	if runWatch {
		cfg.Bindings.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	in, err := openInput(runStdin)
	if err != nil {
		return err
	}
	defer in.close()

	application, err := app.New(app.Options{
		Config:        cfg,
		Source:        in.src,
		Probe:         in.probe,
		Out:           in.out,
		Echo:          runEcho,
		HandleSignals: true,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer application.Close()

	return application.Run(context.Background())
}

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielrainer/fish-shell/internal/app"
	"github.com/danielrainer/fish-shell/internal/command"
	"github.com/danielrainer/fish-shell/internal/input"
	"github.com/danielrainer/fish-shell/internal/input/key"
	"github.com/danielrainer/fish-shell/internal/input/keymap"
)

var keysStdin bool

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the name of each key pressed",
	Long: `Prints the canonical name of every key as it is decoded, with the bind
command that would bind it. Press ctrl-c or ctrl-d twice in a row to exit.`,
	Args: cobra.NoArgs,
	RunE: runKeys,
}

func init() {
	keysCmd.Flags().BoolVar(&keysStdin, "stdin", false, "Read stdin even when it is a terminal")
}

func runKeys(_ *cobra.Command, _ []string) error {
	in, err := openInput(keysStdin)
	if err != nil {
		return err
	}
	defer in.close()

	// No bindings: every key arrives as a self-insert of exactly one key.
	cfg.Bindings.Preset = keymap.PresetNone
	cfg.Bindings.Files = nil
	cfg.Bindings.Watch = false
	cfg.Commands.Script = ""

	application, err := app.New(app.Options{
		Config:        cfg,
		Source:        in.src,
		Out:           in.out,
		HandleSignals: true,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer application.Close()

	fmt.Fprintln(in.out, "Press a key:")
	kr := &keyReader{out: in.out}
	application.Registry().RegisterFunc(command.SelfInsertCommand, kr.handle)
	application.Registry().RegisterFunc(command.InterruptCommand, func(context.Context, command.Invocation) error {
		return input.ErrStop
	})

	return application.Run(context.Background())
}

// keyReader prints keys and stops after the same exit key twice.
type keyReader struct {
	out  io.Writer
	last key.Key
	seen time.Time
}

func (kr *keyReader) handle(_ context.Context, inv command.Invocation) error {
	if len(inv.Keys) == 0 {
		return nil
	}
	k := inv.Keys[0]
	now := time.Now()

	if !kr.seen.IsZero() {
		if gap := now.Sub(kr.seen); gap > 200*time.Millisecond {
			fmt.Fprintf(kr.out, "# %d ms since the previous key\n", gap.Milliseconds())
		}
	}
	fmt.Fprintln(kr.out, bindCommand(k))

	exit := k == key.Ctrl('c') || k == key.Ctrl('d')
	if exit && kr.last == k {
		return input.ErrStop
	}
	if exit {
		fmt.Fprintf(kr.out, "Press %s again to exit\n", k)
	}
	kr.last = k
	kr.seen = now
	return nil
}

// bindCommand formats the command that binds k, quoting names the shell
// would otherwise interpret.
func bindCommand(k key.Key) string {
	name := k.String()
	if strings.ContainsAny(name, `'"\$;|&<>(){}[]*?~# `) {
		name = "'" + strings.ReplaceAll(name, "'", `\'`) + "'"
	}
	return fmt.Sprintf("bind %s 'do something'", name)
}

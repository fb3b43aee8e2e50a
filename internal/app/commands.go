package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielrainer/fish-shell/internal/command"
	"github.com/danielrainer/fish-shell/internal/input"
	"github.com/danielrainer/fish-shell/internal/input/keymap"
)

// unknownCommand handles bound commands nothing implements. They are
// logged, not treated as failures, so presets can name commands this tool
// does not have.
func (app *Application) unknownCommand(_ context.Context, inv command.Invocation) error {
	app.logger.Debug("unhandled command",
		zap.String("command", inv.Name),
		zap.Strings("args", inv.Args),
		zap.String("mode", inv.Mode))
	return nil
}

// bindFromScript adds a binding made by a script to the live table and to
// the table binding file reloads start from.
func (app *Application) bindFromScript(b keymap.Binding) error {
	base := app.scripted.Add
	if app.watcher != nil {
		base = app.watcher.Bind
	}
	if err := base(b); err != nil {
		return err
	}
	t := app.table
	if app.resolver != nil {
		t = app.resolver.Table()
	}
	return t.Add(b)
}

// echoHook prints each resolution after it runs.
type echoHook struct {
	input.BaseHook
	app *Application
}

func (h echoHook) AfterDispatch(res *input.Resolution, err error) {
	if err != nil && !errors.Is(err, input.ErrStop) {
		fmt.Fprintf(h.app.opts.Out, "%s: %v\n", res, err)
		return
	}
	fmt.Fprintln(h.app.opts.Out, res)
}

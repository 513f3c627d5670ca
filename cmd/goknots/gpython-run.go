package main

import (
	"time"

	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	_ "github.com/2x3systems/goknots/pyknots"
	_ "github.com/go-python/gpython/stdlib"
)

const replStartup = "lib/_REPL_startup.py"

// runPython runs the given script, or the REPL when pathname is empty.
func runPython(pathname string) error {
	ctx := py.NewContext(py.DefaultContextOpts())
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	if len(pathname) == 0 {
		replCtx := repl.New(ctx)
		if err := runScript(ctx, replStartup, replCtx.Module); err != nil {
			return err
		}
		cli.RunREPL(replCtx)
		return nil
	}

	startTime := time.Now()
	klog.V(1).Infof("executing %q", pathname)
	if err := runScript(ctx, pathname, nil); err != nil {
		return err
	}
	klog.V(1).Infof("%q complete in %v", pathname, time.Since(startTime))
	return nil
}

// runScript runs a Python file in ctx; a Python exception has its traceback dumped to stderr.
func runScript(ctx py.Context, pathname string, inModule interface{}) error {
	if _, err := py.RunFile(ctx, pathname, py.CompileOpts{}, inModule); err != nil {
		py.TracebackDump(err)
		return errors.Wrapf(err, "python %s", pathname)
	}
	return nil
}

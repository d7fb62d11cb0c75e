// Command measy creates files from templates.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cpcf/measy/cmd/measy/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commands.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

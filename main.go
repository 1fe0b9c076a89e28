package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/objectbox/buildenv/dockerbuild"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := dockerbuild.Main(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

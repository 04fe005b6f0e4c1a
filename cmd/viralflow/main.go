// Command viralflow turns one piece of content into platform-ready posts.
//
//	viralflow serve --addr :8000
//	viralflow generate --platforms twitter,blog --tone Casual "Launching our new bottle!"
//	viralflow visuals --topic "reusable bottles" --keywords eco,steel
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

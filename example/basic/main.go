package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ghalamif/CipherPulse"
)

func main() {
	flow, err := cipherpulse.Conf("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	flow.Config().Storage.Path = "/tmp"

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ts, err := flow.Run(ctx, cipherpulse.OutFormats(cipherpulse.FormatLog, cipherpulse.FormatPNG))
	if err != nil {
		log.Fatalf("session exited: %v", err)
	}
	log.Printf("collected %d samples", ts.Len())
}

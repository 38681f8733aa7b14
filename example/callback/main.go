package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ghalamif/CipherPulse/pkg/cipherpulse"
)

func main() {
	flow, err := cipherpulse.Conf("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	callback := func(ts cipherpulse.TimeSeries) error {
		for _, sample := range ts {
			fmt.Printf("%s seq=%d enc=%.0f dec=%.0f disk_enc=%.0f interval=%.3f\n",
				sample.Timestamp.Format(time.RFC3339),
				sample.Seq,
				sample.EncryptRate,
				sample.DecryptRate,
				sample.DiskEncryptRate,
				sample.IntervalSeconds,
			)
		}
		return nil
	}

	if _, err := flow.Run(ctx, cipherpulse.OutCallback("stdout", callback)); err != nil {
		log.Fatalf("session error: %v", err)
	}
}

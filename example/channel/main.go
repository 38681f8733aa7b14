package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ghalamif/CipherPulse"
)

func main() {
	flow, err := cipherpulse.Conf("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exp, series, closeSeries := cipherpulse.NewChannelExporter("fanout", 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		averageWorker(series)
	}()

	if _, err := flow.Run(ctx, cipherpulse.OutExporter("fanout", exp)); err != nil {
		log.Fatalf("session error: %v", err)
	}
	closeSeries()
	wg.Wait()
}

func averageWorker(series <-chan cipherpulse.TimeSeries) {
	for ts := range series {
		for _, ch := range []cipherpulse.Channel{cipherpulse.ChannelEncrypt, cipherpulse.ChannelDiskEncrypt} {
			col := ts.Column(ch)
			var sum float64
			for _, v := range col {
				sum += v
			}
			if len(col) > 0 {
				fmt.Printf("%s: mean %.0f B/s over %d samples\n", ch.Label(), sum/float64(len(col)), len(col))
			}
		}
	}
}

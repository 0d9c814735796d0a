package main

import (
	"context"
	"fmt"
	"log"
	"time"

	udmlcore "github.com/udmtek/udml-core"
)

func main() {
	flow, err := udmlcore.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, reports, closeReports := udmlcore.NewChannelStore("fanout", 32)
	defer closeReports()

	go fanoutWorker("reports", reports)

	if err := flow.Run(ctx, udmlcore.StreamOutStore(store)); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}

func fanoutWorker(name string, reports <-chan udmlcore.Report) {
	for report := range reports {
		fmt.Printf("[%s] %d faults, %d recommendations at %s\n",
			name, len(report.Faults), len(report.Recommendations), time.Now().Format(time.RFC3339))
	}
}

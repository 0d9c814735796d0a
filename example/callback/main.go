package main

import (
	"context"
	"fmt"
	"log"

	"github.com/udmtek/udml-core/pkg/udml"
)

func main() {
	flow, err := udml.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	onFaults := func(batch []udml.Fault) error {
		for _, fault := range batch {
			fmt.Printf("%s [%s/%s] %s (confidence %.2f)\n",
				fault.DetectedAt.Format("2006-01-02 15:04:05"),
				fault.Category,
				fault.Severity,
				fault.Description,
				fault.Confidence,
			)
		}
		return nil
	}

	onRecs := func(batch []udml.MaintenanceRecommendation) error {
		for _, rec := range batch {
			fmt.Printf("maintenance: %s priority=%d kind=%s cost=%.0f\n",
				rec.EquipmentID, rec.Priority, rec.Kind, rec.Cost)
		}
		return nil
	}

	if err := flow.Run(ctx, udml.StreamOutCallback("stdout", onFaults, onRecs)); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}

package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/udmtek/udml-core/internal/domain"
	"github.com/udmtek/udml-core/internal/ports"
)

// FaultAnalyzer is the analysis-side contract the pipeline drives; satisfied
// by rca.Analyzer.
type FaultAnalyzer interface {
	Analyze(ctx context.Context, data *domain.DiagnosticData) ([]domain.Fault, error)
}

// MaintenancePredictor is satisfied by maintenance.Engine.
type MaintenancePredictor interface {
	Predict(fleet []domain.EquipmentStatus) ([]domain.MaintenanceRecommendation, error)
}

// FleetFunc maps a snapshot onto the equipment statuses it carries.
type FleetFunc func(*domain.DiagnosticData) []domain.EquipmentStatus

// RunAnalyzePipeline drains the queue in batches: per snapshot, root cause
// analysis and maintenance prediction run concurrently, their outputs are
// stored, and the journal watermark advances only once the whole batch is
// persisted. A store failure leaves the entries for replay.
func RunAnalyzePipeline(ctx context.Context, jrn ports.Journal, q ports.SnapshotQueue, an FaultAnalyzer, eng MaintenancePredictor, fleet FleetFunc, store ports.ReportStore, pol ports.Policy, obs ports.Observability) {
	for {
		if ctx.Err() != nil {
			return
		}

		batch := q.DequeueBatch(pol.MaxBatchSize)
		if len(batch) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(pol.IdleSleep):
			}
			continue
		}

		var (
			maxID ports.JournalEntryID
			clean = true
		)
		for _, item := range batch {
			start := time.Now()

			var (
				wg      sync.WaitGroup
				faults  []domain.Fault
				faultsE error
				recs    []domain.MaintenanceRecommendation
				recsE   error
			)
			wg.Add(2)
			go func() {
				defer wg.Done()
				faults, faultsE = an.Analyze(ctx, item.Snapshot)
			}()
			go func() {
				defer wg.Done()
				if fleet == nil {
					return
				}
				statuses := fleet(item.Snapshot)
				if len(statuses) == 0 {
					return
				}
				recs, recsE = eng.Predict(statuses)
			}()
			wg.Wait()

			if ctx.Err() != nil {
				return
			}
			if faultsE != nil {
				obs.LogError("analysis_failed", faultsE)
				clean = false
				continue
			}
			if recsE != nil {
				obs.LogError("prediction_failed", recsE)
				clean = false
				continue
			}

			if err := store.SaveFaults(faults); err != nil {
				obs.LogError("store_faults_failed", err)
				clean = false
				continue
			}
			if err := store.SaveRecommendations(recs); err != nil {
				obs.LogError("store_recommendations_failed", err)
				clean = false
				continue
			}

			obs.ObserveLatency("udml_analysis_latency_seconds", time.Since(start).Seconds())
			obs.IncCounter("udml_snapshots_analyzed_total", 1)
			obs.IncCounter("udml_faults_detected_total", float64(len(faults)))
			obs.IncCounter("udml_recommendations_total", float64(len(recs)))

			if item.ID > maxID {
				maxID = item.ID
			}
		}

		// Advancing the watermark past a failed snapshot would lose it.
		if !clean || maxID == 0 {
			continue
		}
		if err := jrn.Commit(maxID); err != nil {
			obs.LogError("journal_commit_failed", err)
		}
	}
}

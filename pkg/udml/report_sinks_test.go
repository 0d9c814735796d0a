package udml

import (
	"errors"
	"testing"
	"time"
)

func TestNewCallbackStore(t *testing.T) {
	var gotFaults []Fault
	var gotRecs []MaintenanceRecommendation
	rs := NewCallbackStore("cb",
		func(batch []Fault) error {
			gotFaults = append(gotFaults, batch...)
			return nil
		},
		func(batch []MaintenanceRecommendation) error {
			gotRecs = append(gotRecs, batch...)
			return nil
		})

	fault := Fault{ID: "f-1", Category: "MOTOR_OVERLOAD", Confidence: 0.8}
	if err := rs.SaveFaults([]Fault{fault}); err != nil {
		t.Fatalf("SaveFaults returned error: %v", err)
	}
	if len(gotFaults) != 1 || gotFaults[0].ID != fault.ID {
		t.Fatalf("mismatched fault payload: %+v", gotFaults)
	}

	rec := MaintenanceRecommendation{ID: "r-1", EquipmentID: "pump-3"}
	if err := rs.SaveRecommendations([]MaintenanceRecommendation{rec}); err != nil {
		t.Fatalf("SaveRecommendations returned error: %v", err)
	}
	if len(gotRecs) != 1 || gotRecs[0].EquipmentID != rec.EquipmentID {
		t.Fatalf("mismatched recommendation payload: %+v", gotRecs)
	}
}

func TestNewCallbackStoreNilHandler(t *testing.T) {
	rs := NewCallbackStore("", nil, nil)
	if err := rs.SaveFaults([]Fault{{ID: "f"}}); err == nil {
		t.Fatalf("expected error when fault handler is nil")
	}
	if err := rs.SaveRecommendations([]MaintenanceRecommendation{{ID: "r"}}); err == nil {
		t.Fatalf("expected error when recommendation handler is nil")
	}
}

func TestNewChannelStore(t *testing.T) {
	rs, ch, closeFn := NewChannelStore("chan", 1)
	defer closeFn()

	fault := Fault{ID: "f-7", Category: "SENSOR_FAILURE"}
	errCh := make(chan error, 1)

	go func() {
		errCh <- rs.SaveFaults([]Fault{fault})
	}()

	var report Report
	select {
	case report = <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel report")
	}

	if err := <-errCh; err != nil {
		t.Fatalf("SaveFaults returned error: %v", err)
	}
	if len(report.Faults) != 1 || report.Faults[0].ID != fault.ID {
		t.Fatalf("unexpected report data: %+v", report)
	}

	closeFn()
	if err := rs.SaveFaults([]Fault{fault}); !errors.Is(err, ErrChannelStoreClosed) {
		t.Fatalf("expected ErrChannelStoreClosed, got %v", err)
	}
}

package jobs

import (
	"context"
	"testing"
	"time"

	"runlab/stride/internal/constants"
	gormModels "runlab/stride/internal/models/gorm"

	"go.uber.org/zap"
)

func TestDailyScheduler_NextRun(t *testing.T) {
	s := NewDailyScheduler(nil, 4, 0, false, zap.NewNop().Sugar())
	loc := time.FixedZone("CET", 3600)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before", time.Date(2024, 3, 1, 3, 59, 0, 0, loc), time.Date(2024, 3, 1, 4, 0, 0, 0, loc)},
		{"exactly at", time.Date(2024, 3, 1, 4, 0, 0, 0, loc), time.Date(2024, 3, 2, 4, 0, 0, 0, loc)},
		{"after", time.Date(2024, 3, 1, 18, 30, 0, 0, loc), time.Date(2024, 3, 2, 4, 0, 0, 0, loc)},
		{"month end", time.Date(2024, 2, 29, 23, 0, 0, 0, loc), time.Date(2024, 3, 1, 4, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.nextRun(tt.now); !got.Equal(tt.want) {
				t.Errorf("nextRun(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestDailyScheduler_DoneClosesAfterShutdown(t *testing.T) {
	db := setupTestDB(t)
	job := newTestJob(t, db, &fakeSource{})
	s := NewDailyScheduler(job, 4, 0, true, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	go s.RunScheduled(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for {
		var n int64
		db.Model(&gormModels.SyncLog{}).Where("status = ?", constants.SyncStatusCompleted).Count(&n)
		if n == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	select {
	case <-s.Done():
		t.Fatal("Done closed before shutdown")
	default:
	}

	cancel()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	var entries []gormModels.SyncLog
	if err := db.Find(&entries).Error; err != nil {
		t.Fatalf("read sync log: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != constants.SyncStatusCompleted {
		t.Errorf("expected one completed startup sync, got %+v", entries)
	}
}

package jobs

// ItemOutcome is the fate of one unit of work inside a batch stage.
type ItemOutcome string

const (
	OutcomeSynced  ItemOutcome = "synced"
	OutcomeSkipped ItemOutcome = "skipped"
)

// ItemResult records what happened to one activity or segment.
type ItemResult struct {
	ID      int64       `json:"id"`
	Outcome ItemOutcome `json:"outcome"`
	Count   int         `json:"count,omitempty"`
	Reason  string      `json:"reason,omitempty"`
}

// BatchSummary aggregates the per-item results of a stage.
type BatchSummary struct {
	Stage     string       `json:"stage"`
	Items     []ItemResult `json:"items"`
	Synced    int          `json:"synced"`
	Skipped   int          `json:"skipped"`
	Persisted int          `json:"persisted"`
	// ShortCircuited is set when the stage found nothing to do for today.
	ShortCircuited bool `json:"short_circuited,omitempty"`
}

func newBatch(stage string) *BatchSummary {
	return &BatchSummary{Stage: stage, Items: []ItemResult{}}
}

func (b *BatchSummary) synced(id int64, count int) {
	b.Items = append(b.Items, ItemResult{ID: id, Outcome: OutcomeSynced, Count: count})
	b.Synced++
	b.Persisted += count
}

func (b *BatchSummary) skipped(id int64, err error) {
	b.Items = append(b.Items, ItemResult{ID: id, Outcome: OutcomeSkipped, Reason: err.Error()})
	b.Skipped++
}

// SyncResult is returned by RunSync and serialised by the HTTP and CLI
// adapters.
type SyncResult struct {
	Status             string        `json:"status"`
	Mode               string        `json:"mode"`
	SyncLogID          uint          `json:"sync_log_id"`
	ActivitiesSynced   int           `json:"activities_synced"`
	DetailsSynced      int           `json:"details_synced"`
	RecordsCreated     int           `json:"records_created"`
	LegendsSnapshotted int           `json:"legends_snapshotted"`
	Details            *BatchSummary `json:"details,omitempty"`
	Legends            *BatchSummary `json:"legends,omitempty"`
}

package constants

// Sync modes
const (
	SyncModeIncremental = "incremental"
	SyncModeFull        = "full"
)

// sync_log.status values
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusError     = "error"
)

// Sync stages, used for metrics labels and log fields
const (
	SyncStageActivities = "activities"
	SyncStageDetails    = "details"
	SyncStageRecords    = "records"
	SyncStageLegends    = "legends"
)

package gorm

// SyncLog tracks one sync invocation.
type SyncLog struct {
	ID            uint    `gorm:"column:id;primaryKey;autoIncrement"`
	SyncType      string  `gorm:"column:sync_type;type:varchar(20);not null"`
	StartedAt     string  `gorm:"column:started_at;not null"`
	CompletedAt   *string `gorm:"column:completed_at"`
	RecordsSynced int     `gorm:"column:records_synced;default:0"`
	Status        string  `gorm:"column:status;type:varchar(20);default:running"`
	Error         *string `gorm:"column:error"`
}

func (SyncLog) TableName() string {
	return "sync_log"
}

// AllModels lists every table, in dependency order, for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&Athlete{},
		&Activity{},
		&Segment{},
		&SegmentEffort{},
		&LocalLegendSnapshot{},
		&PersonalRecord{},
		&SyncLog{},
	}
}

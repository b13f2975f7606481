package gorm

// LocalLegendSnapshot records one day's local legend status for one segment.
type LocalLegendSnapshot struct {
	ID            uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Date          string `gorm:"column:date;not null;uniqueIndex:idx_ll_date_segment;index"`
	SegmentID     int64  `gorm:"column:segment_id;not null;uniqueIndex:idx_ll_date_segment;index"`
	IsLocalLegend bool   `gorm:"column:is_local_legend;not null"`
	EffortCount   int    `gorm:"column:effort_count"`
}

func (LocalLegendSnapshot) TableName() string {
	return "local_legend_snapshot"
}

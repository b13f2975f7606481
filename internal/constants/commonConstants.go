package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixCockpit     CachePrefix = "COCKPIT_"
	CachePrefixVolume      CachePrefix = "VOLUME_"
	CachePrefixPerformance CachePrefix = "PERF_"
	CachePrefixProjections CachePrefix = "PROJ_"
	CachePrefixSegments    CachePrefix = "SEG_"
	CachePrefixAnalysis    CachePrefix = "ANALYSIS_"
)

// ActivityTypeRun is the only Strava activity type persisted by sync.
const ActivityTypeRun = "Run"

// Date layouts used for every stored date column.
const (
	DayLayout  = "2006-01-02"
	DateLayout = "2006-01-02T15:04:05Z"
)

package domain

// CacheKind names one cached snapshot in the local store.
type CacheKind string

// Cached entity kinds. The values are the local store keys.
const (
	CacheActiveStudent CacheKind = "learnquest-student"
	CacheStudents      CacheKind = "learnquest-students"
	CacheQuests        CacheKind = "learnquest-quests"
	CacheProgress      CacheKind = "learnquest-progress"
	CacheSMSLogs       CacheKind = "learnquest-sms-logs"
)

// Local store keys that are not entity snapshots.
const (
	// CacheTimestampPrefix prefixes the freshness stamp key of each kind.
	CacheTimestampPrefix = "learnquest-cache-timestamp-"

	// RecommendationsKeyPrefix prefixes the per-student recommendation cache.
	RecommendationsKeyPrefix = "learnquest-recommendations-"

	// PendingOperationsKey holds the queue of deferred operations.
	PendingOperationsKey = "offline-updates"

	// RejectedOperationsKey holds operations the backend refused during replay.
	RejectedOperationsKey = "offline-updates-rejected"
)

// CacheKinds lists every entity kind, in display order.
func CacheKinds() []CacheKind {
	return []CacheKind{CacheActiveStudent, CacheStudents, CacheQuests, CacheProgress, CacheSMSLogs}
}

// TimestampKey returns the key of the freshness stamp for the kind.
func (k CacheKind) TimestampKey() string {
	return CacheTimestampPrefix + string(k)
}

// String returns the string representation.
func (k CacheKind) String() string {
	return string(k)
}

package redisx

// FeedChannel is the pub/sub channel carrying full entity snapshots,
// one channel per entity type.
func FeedChannel(entity string) string {
	return "feed:" + entity
}

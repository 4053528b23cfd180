package services

// CacheCleared is published after the response cache was invalidated.
type CacheCleared struct {
	Deleted int
}

// CachePruned is published after expired cache entries were removed.
type CachePruned struct {
	Deleted int
}

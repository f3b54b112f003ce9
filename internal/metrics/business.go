package metrics

// IncrementCommentCreated increments the comment creation counter
func (m *Metrics) IncrementCommentCreated() {
	m.safeExecute("IncrementCommentCreated", func() {
		m.CommentCreatedTotal.Inc()
	})
}

// IncrementCommentDeleted increments the deletion counter for one mode
// ("soft" or "hard")
func (m *Metrics) IncrementCommentDeleted(mode string) {
	m.safeExecute("IncrementCommentDeleted", func() {
		m.CommentDeletedTotal.WithLabelValues(mode).Inc()
	})
}

// IncrementLikeToggled increments the like toggle counter
func (m *Metrics) IncrementLikeToggled() {
	m.safeExecute("IncrementLikeToggled", func() {
		m.LikesToggledTotal.Inc()
	})
}

// IncrementCacheHit increments the comment page cache hit counter
func (m *Metrics) IncrementCacheHit() {
	m.safeExecute("IncrementCacheHit", func() {
		m.CacheHitsTotal.Inc()
	})
}

// IncrementCacheMiss increments the comment page cache miss counter
func (m *Metrics) IncrementCacheMiss() {
	m.safeExecute("IncrementCacheMiss", func() {
		m.CacheMissesTotal.Inc()
	})
}

// SetCommentsTotal sets the stored comments gauge
func (m *Metrics) SetCommentsTotal(count int64) {
	m.safeExecute("SetCommentsTotal", func() {
		m.CommentsTotal.Set(float64(count))
	})
}

// SetLikesTotal sets the stored likes gauge
func (m *Metrics) SetLikesTotal(count int64) {
	m.safeExecute("SetLikesTotal", func() {
		m.LikesTotal.Set(float64(count))
	})
}

// IncrementOptimisticRollback increments the rollback counter
func (m *Metrics) IncrementOptimisticRollback() {
	m.safeExecute("IncrementOptimisticRollback", func() {
		m.OptimisticRollbacksTotal.Inc()
	})
}

// IncrementStaleFetchDropped increments the superseded fetch counter
func (m *Metrics) IncrementStaleFetchDropped() {
	m.safeExecute("IncrementStaleFetchDropped", func() {
		m.StaleFetchesDroppedTotal.Inc()
	})
}

// IncrementProvisionalResplice increments the provisional re-splice counter
func (m *Metrics) IncrementProvisionalResplice() {
	m.safeExecute("IncrementProvisionalResplice", func() {
		m.ProvisionalResplicesTotal.Inc()
	})
}

// IncrementWSConnections bumps the active websocket subscriber gauge
func (m *Metrics) IncrementWSConnections() {
	m.safeExecute("IncrementWSConnections", func() {
		m.WSConnectionsActive.Inc()
	})
}

// DecrementWSConnections drops the active websocket subscriber gauge
func (m *Metrics) DecrementWSConnections() {
	m.safeExecute("DecrementWSConnections", func() {
		m.WSConnectionsActive.Dec()
	})
}

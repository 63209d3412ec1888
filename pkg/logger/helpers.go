package logger

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, settings map[string]interface{}) {
	l = l.WithField("component", component)
	if len(settings) > 0 {
		l = l.WithFields(settings)
	}
	l.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(l Logger, component string, reason string) {
	l.WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// LogBatch logs the outcome of one processed page
func LogBatch(l Logger, page int, ids, updated, missing int, nextToken string) {
	l.InfoWithFields("Batch processed", map[string]interface{}{
		"page":       page,
		"ids":        ids,
		"updated":    updated,
		"missing":    missing,
		"next_token": nextToken,
	})
}

// LogQuota logs a remote quota or rate limit rejection
func LogQuota(l Logger, endpoint string, reason string) {
	l.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"reason":   reason,
		"action":   "rate_limited",
	}).Warn("Remote quota or rate limit reached")
}

// Package logger provides the structured logging interface used across ytrelink.
//
// It wraps zerolog behind a small interface so components can attach fields
// (run id, page, video id) without depending on zerolog directly:
//
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.InfoWithFields("Batch processed", map[string]interface{}{
//	    "page":    3,
//	    "updated": 7,
//	})
//
// Console output is coloured and goes to stderr. When logging.file is set,
// events are also appended to that file. Tests use NewTestLogger to capture
// messages or NewNopLogger to discard them.
package logger

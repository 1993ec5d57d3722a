// Package jobs provides scheduled background tasks for the dispatch engine.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
// No job is needed for correctness: offer deadlines are evaluated whenever an
// offer is read. The jobs keep stored state tidy.
//
// # Available Jobs
//
// 1. BroadcastExpiryJob - Runs every second to mark overdue dispatch offers expired
// 2. LimiterPruneJob - Runs every minute to drop idle delivery-code attempt buckets
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(expireHandler, "", limiter, time.Hour, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed sweep is logged and retried on the next tick. Failed job starts stop
// any already running jobs.
package jobs

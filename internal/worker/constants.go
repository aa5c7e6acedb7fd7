package worker

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// ============================================================================
// Log Messages - Daily Check Worker
// ============================================================================

// Log messages for daily check worker operations
const (
	LogMsgDailyCheckStandby       = "Daily check standby"
	LogMsgDailyCheckApproach      = "Daily check scheduled"
	LogMsgDailyCheckStarting      = "Daily check starting"
	LogMsgDailyCheckCompleted     = "Daily check completed"
	LogMsgDailyCheckFailed        = "Daily check failed"
	LogMsgDailyCheckManualTrigger = "Daily check manually triggered"
)

// ============================================================================
// Test Configuration
// ============================================================================

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount           = 2
	TestQueueSize             = 10
	TestExpectedJobCount      = 2
	TestWorkerProcessWaitTime = 100 // milliseconds
)

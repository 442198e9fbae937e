package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "appointment_scheduler_db"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // uploads carry documents

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultStoreReadTimeout  = 5 * time.Second
	DefaultStoreWriteTimeout = 5 * time.Second

	// DefaultHoldDuration is how long a waiting-list entrant may confirm an
	// offered slot before the hold expires and rolls over.
	DefaultHoldDuration = 3 * time.Minute

	// DefaultWaitingListCapacity bounds entries per legal service. The join
	// check rejects only when the current count is strictly greater than this
	// value, so one extra entry is admitted before the first rejection.
	DefaultWaitingListCapacity = 5

	DefaultSMTPHost    = "localhost"
	DefaultSMTPPort    = "1025"
	DefaultEmailSender = "no-reply@lexsched.local"

	DefaultKafkaTopic = "lexsched.lifecycle"

	DefaultLogLevel = "info"
)

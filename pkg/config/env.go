package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvStoreReadTimeout  = "STORE_READ_TIMEOUT"
	EnvStoreWriteTimeout = "STORE_WRITE_TIMEOUT"

	EnvHoldDuration        = "HOLD_DURATION"
	EnvWaitingListCapacity = "WAITING_LIST_CAPACITY"

	EnvSMTPHost    = "SMTP_HOST"
	EnvSMTPPort    = "SMTP_PORT"
	EnvEmailSender = "EMAIL_SENDER"

	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvKafkaTopic   = "KAFKA_TOPIC"
)

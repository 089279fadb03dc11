package common

const (
	RedisStreamAnalysisReport = "analysis.report"

	RedisStreamGroup    = "notifier-group"
	RedisStreamConsumer = "notifier-consumer"
)

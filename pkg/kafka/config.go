package kafka

import "time"

// Config holds Kafka configuration
type Config struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string
	BatchSize     int
	BatchTimeout  time.Duration
	RequiredAcks  int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		ClientID:     "warehouse-core",
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,
	}
}

// TopicNames holds the well-known topic names used by the platform
type TopicNames struct {
	OrderEvents string
	MoveEvents  string
	TodoEvents  string
}

// Topics lists the topics this service publishes to
var Topics = TopicNames{
	OrderEvents: "warehouse.order.events",
	MoveEvents:  "warehouse.move.events",
	TodoEvents:  "warehouse.todo.events",
}

package eventbus

import (
	"fmt"
	"os"
)

// GetBrokers returns Kafka bootstrap servers from env KAFKA_BOOTSTRAP_SERVERS
func GetBrokers() (string, error) {
	v := os.Getenv("KAFKA_BOOTSTRAP_SERVERS")
	if v == "" {
		return "", fmt.Errorf("KAFKA_BOOTSTRAP_SERVERS environment variable is required")
	}
	return v, nil
}

// GetGroupID returns consumer group id from env KAFKA_GROUP_ID
func GetGroupID() (string, error) {
	v := os.Getenv("KAFKA_GROUP_ID")
	if v == "" {
		return "", fmt.Errorf("KAFKA_GROUP_ID environment variable is required")
	}
	return v, nil
}

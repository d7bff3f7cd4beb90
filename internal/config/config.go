// Package config provides configuration parsing and validation for the scheduler-service.
package config

import (
	"fmt"
	"time"
)

// Config holds all configuration parameters for the scheduler-service.
type Config struct {
	HTTPPort          string
	PostgresDSN       string
	KafkaBrokers      string
	RunCompletedTopic string
	RedisAddr         string
	PushGatewayURL    string
	PushGatewayKey    string
	RunInterval       time.Duration
	PollInterval      time.Duration
	RunTimeout        time.Duration
	CreationLookahead time.Duration
}

// Validate checks that all required configuration fields are set and have valid values.
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("http-port cannot be empty")
	}
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres-dsn cannot be empty")
	}
	if c.KafkaBrokers == "" {
		return fmt.Errorf("kafka-brokers cannot be empty")
	}
	if c.RunCompletedTopic == "" {
		return fmt.Errorf("run-completed-topic cannot be empty")
	}
	if c.PushGatewayURL == "" {
		return fmt.Errorf("push-gateway-url cannot be empty")
	}
	if c.RunInterval <= 0 {
		return fmt.Errorf("run-interval must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive")
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("run-timeout must be positive")
	}
	if c.CreationLookahead < 0 {
		return fmt.Errorf("creation-lookahead cannot be negative")
	}
	return nil
}

package infra

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NewAMQPConnection dials the broker configured by AMQP_URL.
func NewAMQPConnection(cfg *Config) (*amqp.Connection, error) {
	if cfg == nil || cfg.AMQPURL == "" {
		return nil, fmt.Errorf("amqp url is required")
	}
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("connect amqp: %w", err)
	}
	return conn, nil
}

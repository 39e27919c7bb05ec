// Package dispatch hands generation tasks to background workers, either an
// in-process pool or a RabbitMQ queue.
package dispatch

import (
	"context"
	"errors"
)

var (
	ErrQueueFull  = errors.New("dispatch queue is full")
	ErrPoolClosed = errors.New("dispatch pool is closed")
)

// Task is one detached video generation for a chat job.
type Task struct {
	JobID  string `json:"job_id"`
	Handle string `json:"handle"`
	Prompt string `json:"prompt"`
}

// Handler runs a task to completion.
type Handler func(ctx context.Context, task Task) error

// Dispatcher accepts tasks without waiting for them to run.
type Dispatcher interface {
	Dispatch(ctx context.Context, task Task) error
}

package main

import (
	"context"
	"errors"
	"testing"

	"katalog/internal/logging"

	"github.com/stretchr/testify/assert"
)

func TestShutdownInOrder_RunsStepsSequentially(t *testing.T) {
	var order []string
	step := func(name string, err error) shutdownStep {
		return shutdownStep{name: name, run: func(context.Context) error {
			order = append(order, name)
			return err
		}}
	}

	shutdown := shutdownInOrder(logging.Discard(),
		step("http", nil),
		step("workers", nil),
		step("broker", errors.New("connection reset")),
		step("throttle", nil),
		step("cache", nil),
		step("database", nil),
	)
	err := shutdown(context.Background())

	assert.Equal(t, []string{"http", "workers", "broker", "throttle", "cache", "database"}, order)
	assert.ErrorContains(t, err, "broker: connection reset")
}

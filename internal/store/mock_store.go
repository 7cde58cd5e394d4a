package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSink is a mock implementation of Sink using testify/mock.
type MockSink struct {
	mock.Mock
}

func (m *MockSink) SaveRun(ctx context.Context, runID uuid.UUID, model string, rows []Row) error {
	args := m.Called(ctx, runID, model, rows)
	return args.Error(0)
}

func (m *MockSink) Close() error {
	args := m.Called()
	return args.Error(0)
}

package testutil_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_ChildrenShareSink(t *testing.T) {
	root := testutil.NewMockLogger()
	child := root.Named("refresh").Named("run").With(logging.String("run_id", "r1"))
	child.Warn("slow")

	msgs := root.Filter("warn")
	require.Len(t, msgs, 1)
	assert.Equal(t, "refresh.run", msgs[0].Logger)
	v, ok := msgs[0].Field("run_id")
	assert.True(t, ok)
	assert.Equal(t, "r1", v)
}

func TestMockLogger_WithContext(t *testing.T) {
	root := testutil.NewMockLogger()
	root.WithContext(logging.WithRequestID(context.Background(), "req-9")).Info("hit")
	root.WithContext(context.Background()).Info("plain")

	msgs := root.GetMessages()
	require.Len(t, msgs, 2)
	v, _ := msgs[0].Field("request_id")
	assert.Equal(t, "req-9", v)
	_, ok := msgs[1].Field("request_id")
	assert.False(t, ok)
}

//Personal.AI order the ending

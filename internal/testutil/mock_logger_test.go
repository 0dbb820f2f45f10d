package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/scaffold-split/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)
	v, ok := messages[0].Field("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_ChildrenShareRecord(t *testing.T) {
	logger := testutil.NewMockLogger()
	var l logging.Logger = logger

	l.Named("split").Named("indexer").With(logging.Int("workers", 4)).Warn("slow", logging.Bool("retry", true))

	msg, ok := logger.Find("warn", "slow")
	require.True(t, ok)
	assert.Equal(t, "split.indexer", msg.Logger)
	require.Len(t, msg.Fields, 2)
	assert.Equal(t, "workers", msg.Fields[0].Key)
	assert.Equal(t, "retry", msg.Fields[1].Key)
}

//Personal.AI order the ending

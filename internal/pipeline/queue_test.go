package pipeline

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"barriometrics/server/internal/aggregator"
	"barriometrics/server/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewGroupQueue(t *testing.T) {
	q := NewGroupQueue(10, quietLogger())
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestGroupQueue_Push(t *testing.T) {
	q := NewGroupQueue(2, quietLogger())

	group := aggregator.Group{AreaID: 1, OperationType: models.OperationSale}
	err := q.Push(group)
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// Fill the buffer
	_ = q.Push(group)
	err = q.Push(group)
	assert.Equal(t, ErrQueueFull, err)
}

func TestGroupQueue_PushAfterClose(t *testing.T) {
	q := NewGroupQueue(2, quietLogger())
	q.Close()

	err := q.Push(aggregator.Group{AreaID: 1})
	assert.Equal(t, ErrQueueClosed, err)
}

func TestGroupQueue_Close(t *testing.T) {
	q := NewGroupQueue(10, quietLogger())

	err := q.Close()
	assert.NoError(t, err)
	assert.True(t, q.IsClosed())

	// Second close is a no-op
	err = q.Close()
	assert.NoError(t, err)
}

func TestGroupQueue_DrainAfterClose(t *testing.T) {
	q := NewGroupQueue(10, quietLogger())
	_ = q.Push(aggregator.Group{AreaID: 1})
	_ = q.Push(aggregator.Group{AreaID: 2})
	q.Close()

	var drained []int
	for group := range q.Items() {
		drained = append(drained, group.AreaID)
	}
	assert.Equal(t, []int{1, 2}, drained)
}

package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	"github.com/unclebandit/donorlink-backend/internal/model"
	"github.com/unclebandit/donorlink-backend/internal/queue"
)

func TestMultiReporterFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := MultiReporter{a, nil, b}

	m.Report(Event{Type: EventProgress, Progress: 50})

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestQueueReporterPublishes(t *testing.T) {
	q := queue.NewInMemoryQueue(retry.Strategy{Attempts: 1})

	var got []Event
	require.NoError(t, q.Subscribe(queue.OutreachEventsTopic, func(p any) error {
		e, ok := p.(Event)
		if !ok {
			return errors.New("unexpected payload")
		}
		got = append(got, e)
		return nil
	}))

	r := QueueReporter{Queue: q}
	r.Report(Event{Type: EventRecipientSent, DonorID: "a"})
	r.Report(Event{Type: EventCompleted, Summary: &model.Summary{Sent: 1, Total: 1}})

	require.Len(t, got, 2)
	assert.Equal(t, EventRecipientSent, got[0].Type)
	assert.Equal(t, 1, got[1].Summary.Sent)
}

func TestQueueReporterWithoutSubscribers(t *testing.T) {
	r := QueueReporter{Queue: queue.NewInMemoryQueue(retry.Strategy{Attempts: 1})}
	assert.NotPanics(t, func() { r.Report(Event{Type: EventProgress}) })
}

func TestLogReporterHandlesEveryType(t *testing.T) {
	for _, typ := range []EventType{EventRecipientSent, EventRecipientFailed, EventProgress, EventCompleted, EventAborted} {
		assert.NotPanics(t, func() { LogReporter{}.Report(Event{Type: typ}) })
	}
}

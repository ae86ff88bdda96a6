package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicSubscribers(t *testing.T) {
	hub := NewHub()
	ch, unsubscribe := hub.Subscribe(TopicAttendance)
	defer unsubscribe()
	other, unsubscribeOther := hub.Subscribe("other")
	defer unsubscribeOther()

	hub.Publish(TopicAttendance, Event{Event: "check_in", Data: "emp-1"})

	select {
	case got := <-ch:
		assert.Equal(t, TopicAttendance, got.Topic)
		assert.Equal(t, "check_in", got.Event)
		assert.Equal(t, "emp-1", got.Data)
	default:
		t.Fatal("expected an event")
	}

	select {
	case <-other:
		t.Fatal("event leaked to another topic")
	default:
	}
}

func TestHub_UnsubscribeClosesChannelOnce(t *testing.T) {
	hub := NewHub()
	ch, unsubscribe := hub.Subscribe(TopicAttendance)
	require.Equal(t, 1, hub.SubscriberCount(TopicAttendance))

	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount(TopicAttendance))
}

func TestHub_PublishSkipsFullSubscriber(t *testing.T) {
	hub := NewHub()
	ch, unsubscribe := hub.Subscribe(TopicAttendance)
	defer unsubscribe()

	for i := 0; i < 100; i++ {
		hub.Publish(TopicAttendance, Event{Event: "tick"})
	}
	assert.Equal(t, cap(ch), len(ch))
}

func TestHub_Close(t *testing.T) {
	hub := NewHub()
	ch, unsubscribe := hub.Subscribe(TopicAttendance)

	hub.Close()
	_, open := <-ch
	assert.False(t, open)

	unsubscribe()

	late, _ := hub.Subscribe(TopicAttendance)
	_, open = <-late
	assert.False(t, open)
}

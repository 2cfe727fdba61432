package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrokerFanOut(t *testing.T) {
	b := NewBroker[string](4)
	first := b.Subscribe("papers")
	second := b.Subscribe("papers")
	other := b.Subscribe("other")

	assert.Equal(t, 2, b.Publish("papers", "created"))
	assert.Equal(t, "created", <-first)
	assert.Equal(t, "created", <-second)
	assert.Len(t, other, 0)
}

func TestBrokerDropsForSlowSubscribers(t *testing.T) {
	b := NewBroker[int](1)
	ch := b.Subscribe("papers")

	assert.Equal(t, 1, b.Publish("papers", 1))
	assert.Equal(t, 0, b.Publish("papers", 2), "full buffer must not block the publisher")
	assert.Equal(t, 1, <-ch)
}

func TestBrokerUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker[int](1)
	ch := b.Subscribe("papers")
	assert.Equal(t, 1, b.Subscribers("papers"))

	b.Unsubscribe("papers", ch)
	assert.Equal(t, 0, b.Subscribers("papers"))

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, b.Publish("papers", 1))
}

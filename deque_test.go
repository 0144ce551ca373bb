package dagsched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeque_LIFO_Bottom(t *testing.T) {
	d := newDeque()
	a, b, c := &fiber{id: 1}, &fiber{id: 2}, &fiber{id: 3}
	d.pushBottom(a)
	d.pushBottom(b)
	d.pushBottom(c)

	assert.Equal(t, 3, d.len())
	assert.Same(t, c, d.popBottom())
	assert.Same(t, b, d.popBottom())
	assert.Same(t, a, d.popBottom())
	assert.Nil(t, d.popBottom())
}

func TestDeque_StealTop_FIFO(t *testing.T) {
	d := newDeque()
	a, b, c := &fiber{id: 1}, &fiber{id: 2}, &fiber{id: 3}
	d.pushBottom(a)
	d.pushBottom(b)
	d.pushBottom(c)

	assert.Same(t, a, d.stealTop())
	assert.Same(t, b, d.stealTop())
	assert.Same(t, c, d.stealTop())
	assert.Nil(t, d.stealTop())
}

func TestDeque_Empty(t *testing.T) {
	d := newDeque()
	assert.Equal(t, 0, d.len())
	assert.Nil(t, d.popBottom())
	assert.Nil(t, d.stealTop())
}

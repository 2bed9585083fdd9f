package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/config"
)

func TestClock(t *testing.T) {
	c := New(config.ControlStep{Start: 5, Total: 10, Interval: 0.5})
	assert.EqualValues(t, 5, c.InternalStep)
	assert.EqualValues(t, 2.5, c.T)
	assert.False(t, c.IsDone())

	for !c.IsDone() {
		c.Step()
	}
	assert.EqualValues(t, 15, c.InternalStep)
	assert.EqualValues(t, 7.5, c.T)

	c.Init()
	assert.EqualValues(t, 5, c.InternalStep)
}

func TestClockString(t *testing.T) {
	c := New(config.ControlStep{Start: 7261, Total: 10, Interval: 1})
	assert.Equal(t, "02:01:01", c.String())
	h, m, s := c.GetHourMinuteSecond()
	assert.Equal(t, 2, h)
	assert.Equal(t, 1, m)
	assert.EqualValues(t, 1, s)
}

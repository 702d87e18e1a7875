package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFake_AfterAdvancesTime(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := NewFake(start)

	fired := <-fake.After(4 * time.Second)

	assert.Equal(t, start.Add(4*time.Second), fired)
	assert.Equal(t, start.Add(4*time.Second), fake.Now())
	assert.Equal(t, []time.Duration{4 * time.Second}, fake.Waits())
}

func TestFake_AfterNonPositive(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := NewFake(start)

	select {
	case fired := <-fake.After(0):
		assert.Equal(t, start, fired)
	default:
		t.Fatal("After(0) should fire immediately")
	}
	assert.Equal(t, start, fake.Now())
}

func TestFake_Advance(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := NewFake(start)

	fake.Advance(time.Minute)

	assert.Equal(t, start.Add(time.Minute), fake.Now())
	require.Empty(t, fake.Waits())
}

func TestReal(t *testing.T) {
	t.Parallel()
	c := Real()
	before := time.Now()
	<-c.After(time.Millisecond)
	assert.False(t, c.Now().Before(before))
}

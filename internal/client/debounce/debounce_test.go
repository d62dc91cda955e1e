package debounce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func TestDebouncer_OnlyStableValuePropagates(t *testing.T) {
	d := New(100*time.Millisecond, "")

	d.Set("a", at(0))
	d.Set("b", at(50))
	d.Set("c", at(120))

	for _, ms := range []int{100, 150, 200, 219} {
		_, ok := d.Advance(at(ms))
		assert.False(t, ok, "propagated at %dms", ms)
	}
	assert.Equal(t, "", d.Value())

	v, ok := d.Advance(at(220))
	assert.True(t, ok)
	assert.Equal(t, "c", v)
	assert.Equal(t, "c", d.Value())

	_, ok = d.Advance(at(500))
	assert.False(t, ok)
}

func TestDebouncer_CancelDiscardsPending(t *testing.T) {
	d := New(10*time.Millisecond, 1)
	d.Set(2, at(0))

	deadline, ok := d.Pending()
	assert.True(t, ok)
	assert.Equal(t, at(10), deadline)

	d.Cancel()
	_, ok = d.Pending()
	assert.False(t, ok)

	_, ok = d.Advance(at(100))
	assert.False(t, ok)
	assert.Equal(t, 1, d.Value())
}

func TestDebouncer_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		delay := rapid.IntRange(1, 200).Draw(t, "delay")
		gaps := rapid.SliceOfN(rapid.IntRange(0, 400), 1, 30).Draw(t, "gaps")

		d := New(time.Duration(delay)*time.Millisecond, -1)
		var got, want []int
		now := 0
		for i, g := range gaps {
			now += g
			if v, ok := d.Advance(at(now)); ok {
				got = append(got, v)
			}
			d.Set(i, at(now))
			if i == len(gaps)-1 || gaps[i+1] >= delay {
				want = append(want, i)
			}
		}
		if v, ok := d.Advance(at(now + delay)); ok {
			got = append(got, v)
		}

		if !assert.ObjectsAreEqual(want, got) {
			t.Fatalf("want %v, got %v", want, got)
		}
	})
}

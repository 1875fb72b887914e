package esversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGet(t *testing.T) {
	defer Set(MinMajor, MinMinor, MinPatch)

	Set(13, 4, 1)
	maj, min, pat := Get()
	assert.Equal(t, uint32(13), maj)
	assert.Equal(t, uint32(4), min)
	assert.Equal(t, uint32(1), pat)
}

func TestAtLeast(t *testing.T) {
	defer Set(MinMajor, MinMinor, MinPatch)

	Set(12, 3, 0)
	assert.True(t, AtLeast(10, 15, 0))
	assert.True(t, AtLeast(12, 3, 0))
	assert.True(t, AtLeast(12, 2, 9))
	assert.True(t, AtLeast(11, 9, 9))
	assert.False(t, AtLeast(12, 3, 1))
	assert.False(t, AtLeast(12, 4, 0))
	assert.False(t, AtLeast(13, 0, 0))
}

func TestParse(t *testing.T) {
	maj, min, pat, err := Parse("14.4.1")
	assert.NoError(t, err)
	assert.Equal(t, [3]uint32{14, 4, 1}, [3]uint32{maj, min, pat})

	maj, min, pat, err = Parse("13.4")
	assert.NoError(t, err)
	assert.Equal(t, [3]uint32{13, 4, 0}, [3]uint32{maj, min, pat})

	for _, bad := range []string{"", "14", "14.4.1.2", "14.x", "14.4-beta", ".4.1"} {
		_, _, _, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestSetBelowMinimumPanics(t *testing.T) {
	assert.Panics(t, func() { Set(10, 14, 6) })
	assert.Panics(t, func() { Set(9, 99, 99) })
}

func TestDefaultIsMinimum(t *testing.T) {
	maj, min, pat := Get()
	assert.True(t, AtLeast(maj, min, pat))
	assert.True(t, AtLeast(MinMajor, MinMinor, MinPatch))
}

package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	assert.Equal(t, uint16(0xABCD), Combine(0xAB, 0xCD))
	assert.Equal(t, uint16(0x0001), Combine(0x00, 0x01))
}

func TestHighLow(t *testing.T) {
	assert.Equal(t, uint8(0xAB), High(0xABCD))
	assert.Equal(t, uint8(0xCD), Low(0xABCD))
}

func TestSetResetIsSet(t *testing.T) {
	v := uint8(0)
	v = Set(3, v)
	assert.True(t, IsSet(3, v))
	assert.Equal(t, uint8(0x08), v)

	v = Reset(3, v)
	assert.False(t, IsSet(3, v))
	assert.Equal(t, uint8(0x00), v)
}

func TestIsSet16(t *testing.T) {
	assert.True(t, IsSet16(9, 1<<9))
	assert.False(t, IsSet16(9, 1<<8))
}

func TestValue(t *testing.T) {
	assert.Equal(t, uint8(1), Value(7, 0x80))
	assert.Equal(t, uint8(0), Value(6, 0x80))
}

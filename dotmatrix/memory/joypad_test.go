package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoypad_NoSelection(t *testing.T) {
	j := NewJoypad(nil)
	assert.Equal(t, uint8(0xFF), j.Read(), "idle register reads all ones")

	j.SetButtons(0x00) // everything pressed, nothing selected
	assert.Equal(t, uint8(0xFF), j.Read())
}

func TestJoypad_ButtonGroup(t *testing.T) {
	j := NewJoypad(nil)
	j.Write(0x10) // bit 5 low: buttons selected

	j.SetButtons(0xFE) // A pressed
	got := j.Read()
	assert.Equal(t, uint8(0xDE), got, "A shows in bit 0, select lines inverted in bits 5-4")
}

func TestJoypad_DpadGroup(t *testing.T) {
	j := NewJoypad(nil)
	j.Write(0x20) // bit 4 low: d-pad selected

	j.SetButtons(0x7F) // down pressed (bit 7)
	got := j.Read()
	assert.Equal(t, uint8(0xE7), got, "down shows in bit 3")
}

func TestJoypad_BothGroups(t *testing.T) {
	j := NewJoypad(nil)
	j.Write(0x00)

	j.SetButtons(0xFE) // A pressed only
	assert.Equal(t, uint8(0xCE), j.Read(), "both nibbles AND'd in")
}

func TestJoypad_InterruptOnSelectedPress(t *testing.T) {
	fired := 0
	j := NewJoypad(func() { fired++ })

	j.Write(0x10) // buttons selected
	j.SetButtons(0xFE)
	assert.Equal(t, 1, fired)

	// Releasing does not fire.
	j.SetButtons(0xFF)
	assert.Equal(t, 1, fired)

	// A d-pad press with only buttons selected does not fire.
	j.SetButtons(0x7F)
	assert.Equal(t, 1, fired)

	j.Write(0x20) // d-pad selected
	j.SetButtons(0xFF)
	j.SetButtons(0xBF) // up pressed
	assert.Equal(t, 2, fired)
}

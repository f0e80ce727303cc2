package memory

import (
	"github.com/valerio/go-dotmatrix/dotmatrix/addr"
	"github.com/valerio/go-dotmatrix/dotmatrix/bit"
)

// Timer encapsulates the DIV/TIMA/TMA/TAC behavior.
//
// TIMA increments on a falling edge of the timer signal: the bit of the
// internal counter selected by TAC[1:0], gated by the TAC enable bit. The
// edge can come from the counter advancing, from a DIV write zeroing the
// counter, or from a TAC write changing the selected bit or the enable.
type Timer struct {
	counter uint16 // internal 16-bit counter; DIV is the upper 8 bits
	tima    uint8
	tma     uint8
	tac     uint8

	reloadCountdown int // master clocks until TIMA := TMA after an overflow
}

// Step advances the timer by the given number of master clocks and reports
// whether the timer interrupt should be requested.
func (t *Timer) Step(clocks int) bool {
	irq := false

	if t.reloadCountdown > 0 {
		if clocks >= t.reloadCountdown {
			t.reloadCountdown = 0
			t.tima = t.tma
			irq = true
		} else {
			t.reloadCountdown -= clocks
		}
	}

	before := t.signal()
	t.counter += uint16(clocks)
	if before && !t.signal() {
		t.increment()
	}

	return irq
}

// signal is the input to the falling-edge detector.
func (t *Timer) signal() bool {
	if t.tac&0x04 == 0 {
		return false
	}

	var index uint8
	switch t.tac & 0x03 {
	case 0x00:
		index = 9
	case 0x01:
		index = 3
	case 0x02:
		index = 5
	case 0x03:
		index = 7
	}
	return bit.IsSet16(index, t.counter)
}

func (t *Timer) increment() {
	if t.tima == 0xFF {
		// Overflow: TIMA reads 0 until the reload lands one machine cycle later.
		t.tima = 0x00
		t.reloadCountdown = 4
		return
	}
	t.tima++
}

func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case addr.DIV:
		return uint8(t.counter >> 8)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value uint8) {
	switch address {
	case addr.DIV:
		// Zeroing the counter can itself produce a falling edge.
		before := t.signal()
		t.counter = 0
		if before && !t.signal() {
			t.increment()
		}
	case addr.TIMA:
		t.tima = value
		// A TIMA write during the reload window cancels the reload and the
		// pending interrupt.
		t.reloadCountdown = 0
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		before := t.signal()
		t.tac = value
		if before && !t.signal() {
			t.increment()
		}
	}
}

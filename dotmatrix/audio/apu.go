// Package audio holds a stub APU register file. Sound is not emulated; the
// registers accept writes and read back their stored values so software that
// pokes at them keeps running.
package audio

import "github.com/valerio/go-dotmatrix/dotmatrix/addr"

// APU is the stubbed audio register file covering 0xFF10-0xFF3F.
type APU struct {
	regs [addr.AudioEnd - addr.AudioStart + 1]uint8
}

// New creates the stub register file.
func New() *APU {
	return &APU{}
}

// ReadRegister returns the stored value for an audio register, or 0xFF for
// addresses outside the audio range.
func (a *APU) ReadRegister(address uint16) uint8 {
	if address < addr.AudioStart || address > addr.AudioEnd {
		return 0xFF
	}
	return a.regs[address-addr.AudioStart]
}

// WriteRegister stores a value for an audio register.
func (a *APU) WriteRegister(address uint16, value uint8) {
	if address < addr.AudioStart || address > addr.AudioEnd {
		return
	}
	a.regs[address-addr.AudioStart] = value
}

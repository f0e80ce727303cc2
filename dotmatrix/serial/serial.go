// Package serial implements the link port shift register and a diagnostic
// log sink for the bytes it sends. Test ROMs print their results over the
// link port, so the completed lines are retained for the host to inspect.
package serial

import (
	"log/slog"
	"strings"

	"github.com/valerio/go-dotmatrix/dotmatrix/addr"
	"github.com/valerio/go-dotmatrix/dotmatrix/bit"
)

// clocksPerBit is the internal-clock bit period: 4194304 Hz / 8192 Hz.
const clocksPerBit = 512

// Port models the SB/SC pair. With no link partner attached, ones shift in
// while the outgoing byte shifts out; the byte captured at transfer start is
// fed to the log sink.
type Port struct {
	sb uint8
	sc uint8

	countdown  int // master clocks until the next bit shifts
	shiftCount int
	outgoing   uint8

	line  []byte
	log   strings.Builder
	debug *slog.Logger
}

// NewPort creates an idle serial port.
func NewPort() *Port {
	return &Port{debug: slog.Default()}
}

func (p *Port) Read(address uint16) uint8 {
	switch address {
	case addr.SB:
		return p.sb
	case addr.SC:
		return p.sc | 0x7E
	default:
		return 0xFF
	}
}

func (p *Port) Write(address uint16, value uint8) {
	switch address {
	case addr.SB:
		p.sb = value
	case addr.SC:
		p.sc = value
		// A transfer starts when both the start bit and the internal-clock
		// bit are set.
		if value&0x81 == 0x81 {
			p.outgoing = p.sb
			p.countdown = clocksPerBit
			p.shiftCount = 0
		}
	}
}

// Step advances the port by the given number of master clocks and reports
// whether the serial interrupt should be requested.
func (p *Port) Step(clocks int) bool {
	if !bit.IsSet(7, p.sc) {
		return false
	}

	p.countdown -= clocks
	if p.countdown > 0 {
		return false
	}

	// Shift one bit out, one bit (a 1, no partner) in.
	p.sb = p.sb<<1 | 1
	p.shiftCount++

	if p.shiftCount < 8 {
		p.countdown += clocksPerBit
		return false
	}

	p.sc = bit.Reset(7, p.sc)
	p.sink(p.outgoing)
	return true
}

// sink buffers printable bytes into a line and flushes on newline.
func (p *Port) sink(b uint8) {
	if b == 0 || b == '\n' || b == '\r' {
		p.log.WriteByte('\n')
		if len(p.line) > 0 {
			p.debug.Info("serial", "line", string(p.line))
			p.line = p.line[:0]
		}
		return
	}
	p.line = append(p.line, b)
	p.log.WriteByte(b)
}

// Log returns everything the port has sent so far, newline-separated.
func (p *Port) Log() string {
	return p.log.String()
}

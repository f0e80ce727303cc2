package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-dotmatrix/dotmatrix/addr"
)

// step advances the port by machine-cycle sized steps (4 clocks each).
func step(p *Port, clocks int) (irq bool) {
	for i := 0; i < clocks; i += 4 {
		if p.Step(4) {
			irq = true
		}
	}
	return irq
}

func TestPort_TransferTiming(t *testing.T) {
	p := NewPort()
	p.Write(addr.SB, 0x55)
	p.Write(addr.SC, 0x81)

	// 8 bits at 512 clocks each.
	assert.False(t, step(p, 8*512-4))
	assert.True(t, p.Step(4), "interrupt on the final shift")

	assert.Equal(t, uint8(0xFF), p.Read(addr.SB), "all ones shifted in with no partner")
	assert.Equal(t, uint8(0x01)|0x7E, p.Read(addr.SC), "start bit cleared")
}

func TestPort_NoTransferWithoutStart(t *testing.T) {
	p := NewPort()
	p.Write(addr.SB, 0x55)

	assert.False(t, step(p, 8*512))
	assert.Equal(t, uint8(0x55), p.Read(addr.SB))
}

func TestPort_SCReadMask(t *testing.T) {
	p := NewPort()
	assert.Equal(t, uint8(0x7E), p.Read(addr.SC))
}

func TestPort_Log(t *testing.T) {
	p := NewPort()
	for _, b := range []byte("ok\n") {
		p.Write(addr.SB, b)
		p.Write(addr.SC, 0x81)
		step(p, 8*512)
	}

	assert.Equal(t, "ok\n", p.Log())
}

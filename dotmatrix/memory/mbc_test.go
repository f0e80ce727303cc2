package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// makeBankedROM builds a ROM where every byte holds its bank number.
func makeBankedROM(banks int) []uint8 {
	rom := make([]uint8, banks*0x4000)
	for i := range rom {
		rom[i] = uint8(i / 0x4000)
	}
	return rom
}

func TestNoMBC(t *testing.T) {
	rom := make([]uint8, 0x8000)
	rom[0x1234] = 0x42
	mbc := NewNoMBC(rom)

	assert.Equal(t, uint8(0x42), mbc.Read(0x1234))

	// ROM writes are ignored
	mbc.Write(0x1234, 0x99)
	assert.Equal(t, uint8(0x42), mbc.Read(0x1234))

	// no external RAM
	assert.Equal(t, uint8(0xFF), mbc.Read(0xA000))
}

func TestMBC1_ROMBanking(t *testing.T) {
	mbc := NewMBC1(makeBankedROM(64), 64, 0)

	t.Run("bank 0 is fixed by default", func(t *testing.T) {
		assert.Equal(t, uint8(0), mbc.Read(0x0000))
		assert.Equal(t, uint8(0), mbc.Read(0x3FFF))
	})

	t.Run("defaults to bank 1 in the switchable region", func(t *testing.T) {
		assert.Equal(t, uint8(1), mbc.Read(0x4000))
	})

	t.Run("writing 0 selects bank 1", func(t *testing.T) {
		mbc.Write(0x2000, 0x00)
		assert.Equal(t, uint8(1), mbc.Read(0x4000))
	})

	t.Run("low register selects banks", func(t *testing.T) {
		mbc.Write(0x2000, 0x05)
		assert.Equal(t, uint8(5), mbc.Read(0x4000))
	})

	t.Run("upper register supplies bits 5-6", func(t *testing.T) {
		mbc.Write(0x2000, 0x01)
		mbc.Write(0x4000, 0x01)
		assert.Equal(t, uint8(33), mbc.Read(0x4000))
	})

	t.Run("writing 0x20 reads as bank 0x21", func(t *testing.T) {
		mbc.Write(0x2000, 0x20) // low 5 bits are zero, forced to 1
		mbc.Write(0x4000, 0x01)
		assert.Equal(t, uint8(0x21), mbc.Read(0x4000))
	})
}

func TestMBC1_AdvancedMode(t *testing.T) {
	mbc := NewMBC1(makeBankedROM(64), 64, 0)

	mbc.Write(0x4000, 0x01) // upper register = 1
	assert.Equal(t, uint8(0), mbc.Read(0x0000), "simple mode keeps bank 0 fixed")

	mbc.Write(0x6000, 0x01) // advanced mode
	assert.Equal(t, uint8(32), mbc.Read(0x0000), "advanced mode maps upper<<5 at 0x0000")
}

func TestMBC1_BankIndexModulo(t *testing.T) {
	// Only 8 banks populated: selecting a higher bank wraps.
	mbc := NewMBC1(makeBankedROM(8), 8, 0)

	mbc.Write(0x2000, 0x0A) // bank 10 mod 8 = 2
	assert.Equal(t, uint8(2), mbc.Read(0x4000))

	mbc.Write(0x4000, 0x01) // bank 42 mod 8 = 2
	mbc.Write(0x2000, 0x0A)
	assert.Equal(t, uint8(2), mbc.Read(0x4000))
}

func TestMBC1_RAM(t *testing.T) {
	mbc := NewMBC1(makeBankedROM(4), 4, 4)

	t.Run("disabled by default", func(t *testing.T) {
		assert.Equal(t, uint8(0xFF), mbc.Read(0xA000))
		mbc.Write(0xA000, 0x42)
		mbc.Write(0x0000, 0x0A)
		assert.Equal(t, uint8(0x00), mbc.Read(0xA000), "write while disabled was dropped")
	})

	t.Run("enable latch matches low nibble 0x0A", func(t *testing.T) {
		mbc.Write(0x0000, 0x1A) // low nibble 0x0A, still enables
		mbc.Write(0xA000, 0x42)
		assert.Equal(t, uint8(0x42), mbc.Read(0xA000))

		mbc.Write(0x0000, 0x00)
		assert.Equal(t, uint8(0xFF), mbc.Read(0xA000))
	})

	t.Run("advanced mode banks RAM via the upper register", func(t *testing.T) {
		mbc.Write(0x0000, 0x0A)
		mbc.Write(0x6000, 0x01)

		mbc.Write(0x4000, 0x00)
		mbc.Write(0xA000, 0x11)
		mbc.Write(0x4000, 0x02)
		mbc.Write(0xA000, 0x22)

		mbc.Write(0x4000, 0x00)
		assert.Equal(t, uint8(0x11), mbc.Read(0xA000))
		mbc.Write(0x4000, 0x02)
		assert.Equal(t, uint8(0x22), mbc.Read(0xA000))
	})
}

func TestMBC1_NoRAMBanks(t *testing.T) {
	mbc := NewMBC1(makeBankedROM(4), 4, 0)
	mbc.Write(0x0000, 0x0A)
	assert.Equal(t, uint8(0xFF), mbc.Read(0xA000))
	mbc.Write(0xA000, 0x42) // must not panic
}

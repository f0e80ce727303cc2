package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeHeaderedROM builds a minimal ROM image with the given header bytes.
func makeHeaderedROM(cartType, romSize, ramSize uint8) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[titleAddress:], "DOTMATRIX")
	rom[cartridgeTypeAddress] = cartType
	rom[romSizeAddress] = romSize
	rom[ramSizeAddress] = ramSize
	return rom
}

func TestNewCartridgeWithData(t *testing.T) {
	t.Run("decodes header", func(t *testing.T) {
		cart, err := NewCartridgeWithData(makeHeaderedROM(0x03, 0x01, 0x03))
		require.NoError(t, err)

		assert.Equal(t, "DOTMATRIX", cart.Title())
		assert.Equal(t, MBC1Type, cart.mbcType)
		assert.True(t, cart.HasBattery())
		assert.Equal(t, 4, cart.romBankCount)
		assert.Equal(t, 4, cart.ramBankCount)
	})

	t.Run("no MBC", func(t *testing.T) {
		cart, err := NewCartridgeWithData(makeHeaderedROM(0x00, 0x00, 0x00))
		require.NoError(t, err)
		assert.Equal(t, NoMBCType, cart.mbcType)
		assert.Equal(t, 2, cart.romBankCount)
	})

	t.Run("rejects unsupported cartridge type", func(t *testing.T) {
		_, err := NewCartridgeWithData(makeHeaderedROM(0x13, 0x00, 0x00))
		assert.ErrorContains(t, err, "unsupported cartridge type")
	})

	t.Run("rejects unsupported RAM size code", func(t *testing.T) {
		_, err := NewCartridgeWithData(makeHeaderedROM(0x02, 0x00, 0x01))
		assert.ErrorContains(t, err, "unsupported RAM size")
	})

	t.Run("rejects truncated images", func(t *testing.T) {
		_, err := NewCartridgeWithData(make([]byte, 0x100))
		assert.ErrorContains(t, err, "too small")
	})
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "ABC", cleanTitle([]byte{'A', 'B', 'C', 0, 0, 0}))
	assert.Equal(t, "A?C", cleanTitle([]byte{'A', 0x01, 'C'}))
	assert.Equal(t, "(Untitled)", cleanTitle([]byte{0, 0, 0}))
}

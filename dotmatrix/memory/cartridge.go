package memory

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

const titleLength = 16

const (
	titleAddress         = 0x134
	cartridgeTypeAddress = 0x147
	romSizeAddress       = 0x148
	ramSizeAddress       = 0x149
	versionNumberAddress = 0x14C
)

// MBCType identifies the memory bank controller variant declared by the
// cartridge header.
type MBCType uint8

const (
	NoMBCType MBCType = iota
	MBC1Type
)

// Cartridge holds a loaded ROM image and the banking metadata decoded from
// its header.
type Cartridge struct {
	data       []byte
	title      string
	version    uint8
	mbcType    MBCType
	hasRAM     bool
	hasBattery bool

	romBankCount int
	ramBankCount int
}

// NewCartridge creates an empty cartridge, equivalent to powering on the
// console with nothing inserted. Useful for tests.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:         make([]byte, 0x8000),
		romBankCount: 2,
	}
}

// NewCartridgeWithData initializes a Cartridge from a ROM image, decoding the
// header. Returns an error for cartridge types or RAM size codes this core
// does not support.
func NewCartridgeWithData(data []byte) (*Cartridge, error) {
	if len(data) < 0x150 {
		return nil, fmt.Errorf("ROM image too small for a cartridge header: %d bytes", len(data))
	}

	cart := &Cartridge{
		data:    make([]byte, len(data)),
		title:   cleanTitle(data[titleAddress : titleAddress+titleLength]),
		version: data[versionNumberAddress],
	}
	copy(cart.data, data)

	switch data[cartridgeTypeAddress] {
	case 0x00:
		cart.mbcType = NoMBCType
	case 0x01:
		cart.mbcType = MBC1Type
	case 0x02:
		cart.mbcType = MBC1Type
		cart.hasRAM = true
	case 0x03:
		cart.mbcType = MBC1Type
		cart.hasRAM = true
		cart.hasBattery = true
	default:
		return nil, fmt.Errorf("unsupported cartridge type 0x%02X", data[cartridgeTypeAddress])
	}

	cart.romBankCount = 1 << (data[romSizeAddress] + 1)

	switch data[ramSizeAddress] {
	case 0x00:
		cart.ramBankCount = 0
	case 0x02:
		cart.ramBankCount = 1
	case 0x03:
		cart.ramBankCount = 4
	case 0x04:
		cart.ramBankCount = 16
	case 0x05:
		cart.ramBankCount = 8
	default:
		return nil, fmt.Errorf("unsupported RAM size code 0x%02X", data[ramSizeAddress])
	}

	slog.Debug("Loaded cartridge",
		"title", cart.title,
		"type", fmt.Sprintf("0x%02X", data[cartridgeTypeAddress]),
		"rom_banks", cart.romBankCount,
		"ram_banks", cart.ramBankCount,
		"battery", cart.hasBattery)

	return cart, nil
}

// Title returns the cleaned-up game title from the header.
func (c *Cartridge) Title() string {
	return c.title
}

// HasBattery reports whether the header declares battery-backed RAM.
func (c *Cartridge) HasBattery() bool {
	return c.hasBattery
}

// cleanTitle processes a raw ROM title: null bytes become spaces, anything
// non-printable becomes '?', and surrounding whitespace is trimmed.
func cleanTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))
	for _, b := range titleBytes {
		r := rune(b)
		if r == 0 {
			r = ' '
		} else if !unicode.IsPrint(r) {
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}

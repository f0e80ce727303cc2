package memory

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-dotmatrix/dotmatrix/addr"
	"github.com/valerio/go-dotmatrix/dotmatrix/audio"
	"github.com/valerio/go-dotmatrix/dotmatrix/bit"
	"github.com/valerio/go-dotmatrix/dotmatrix/serial"
	"github.com/valerio/go-dotmatrix/dotmatrix/video"
)

// clocksPerCycle is how many master clocks one machine cycle spans.
const clocksPerCycle = 4

// MMU decodes the 16-bit address space and distributes time. Every timed
// access moves the whole machine forward one cycle: the transaction happens
// first, then the PPU, timer, and serial port each advance by four clocks,
// then interrupt flags become visible.
type MMU struct {
	cart *Cartridge
	mbc  MBC

	wram [0x2000]uint8
	hram [0x7F]uint8

	PPU    *video.PPU
	APU    *audio.APU
	Timer  *Timer
	Joypad *Joypad
	Serial *serial.Port

	interruptFlag   uint8 // IF, 0xFF0F
	interruptEnable uint8 // IE, 0xFFFF

	// OAM DMA engine state
	dmaActive bool
	dmaBase   uint8
	dmaIndex  uint8
	dmaDelay  uint8

	cycles     uint64
	frameReady bool
}

// New creates a memory unit with no cartridge loaded, equivalent to powering
// on the console with an empty slot.
func New() *MMU {
	m := &MMU{
		cart:   NewCartridge(),
		PPU:    video.New(),
		APU:    audio.New(),
		Timer:  &Timer{},
		Serial: serial.NewPort(),
	}
	m.mbc = newMBC(m.cart)
	m.Joypad = NewJoypad(func() { m.RequestInterrupt(addr.JoypadInterrupt) })
	return m
}

// NewWithCartridge creates a memory unit with the provided cartridge loaded.
func NewWithCartridge(cart *Cartridge) *MMU {
	m := New()
	m.cart = cart
	m.mbc = newMBC(cart)
	return m
}

// Cycles returns the number of machine cycles elapsed since power-on.
func (m *MMU) Cycles() uint64 {
	return m.cycles
}

// ConsumeFrameReady reports whether the PPU entered vertical blank since the
// last call, clearing the flag.
func (m *MMU) ConsumeFrameReady() bool {
	ready := m.frameReady
	m.frameReady = false
	return ready
}

// RequestInterrupt sets the chosen bit in IF.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.interruptFlag = bit.Set(uint8(interrupt), m.interruptFlag)
}

// ClearInterrupt clears the chosen bit in IF, used when a handler is entered.
func (m *MMU) ClearInterrupt(interrupt addr.Interrupt) {
	m.interruptFlag = bit.Reset(uint8(interrupt), m.interruptFlag)
}

// PendingInterrupts returns IE & IF over the five interrupt bits.
func (m *MMU) PendingInterrupts() uint8 {
	return m.interruptEnable & m.interruptFlag & 0x1F
}

// Tick advances the machine by one cycle with no memory transaction, used by
// the CPU for internal ALU and branch cycles.
func (m *MMU) Tick() {
	m.cycles++

	if m.dmaActive {
		if m.dmaDelay > 0 {
			m.dmaDelay--
		} else {
			src := uint16(m.dmaBase)<<8 | uint16(m.dmaIndex)
			m.PPU.WriteOAM(addr.OAMStart+uint16(m.dmaIndex), m.decodeRead(src))
			m.dmaIndex++
			if m.dmaIndex >= 160 {
				m.dmaActive = false
			}
		}
	}

	vblank, stat := m.PPU.Step(clocksPerCycle)
	if vblank {
		m.RequestInterrupt(addr.VBlankInterrupt)
		m.frameReady = true
	}
	if stat {
		m.RequestInterrupt(addr.LCDSTATInterrupt)
	}
	if m.Timer.Step(clocksPerCycle) {
		m.RequestInterrupt(addr.TimerInterrupt)
	}
	if m.Serial.Step(clocksPerCycle) {
		m.RequestInterrupt(addr.SerialInterrupt)
	}
}

// Read performs a timed 8-bit read: the decode happens first, then one cycle
// passes.
func (m *MMU) Read(address uint16) uint8 {
	value := m.RawRead(address)
	m.Tick()
	return value
}

// Write performs a timed 8-bit write.
func (m *MMU) Write(address uint16, value uint8) {
	m.RawWrite(address, value)
	m.Tick()
}

// ReadWord reads a little-endian word as two timed reads, low byte first.
func (m *MMU) ReadWord(address uint16) uint16 {
	low := m.Read(address)
	high := m.Read(address + 1)
	return bit.Combine(high, low)
}

// WriteWord writes a little-endian word low byte first. This is the ordering
// of LD (nn),SP; stack pushes write high-then-low and issue their own
// discrete writes instead.
func (m *MMU) WriteWord(address uint16, value uint16) {
	m.Write(address, bit.Low(value))
	m.Write(address+1, bit.High(value))
}

// RawRead decodes and reads without advancing time. While OAM DMA is active,
// everything outside HRAM reads 0xFF.
func (m *MMU) RawRead(address uint16) uint8 {
	if m.dmaActive && (address < 0xFF80 || address > 0xFFFE) {
		return 0xFF
	}
	return m.decodeRead(address)
}

// RawWrite decodes and writes without advancing time. While OAM DMA is
// active, writes outside HRAM are suppressed.
func (m *MMU) RawWrite(address uint16, value uint8) {
	if m.dmaActive && (address < 0xFF80 || address > 0xFFFE) {
		return
	}
	m.decodeWrite(address, value)
}

func (m *MMU) decodeRead(address uint16) uint8 {
	switch {
	case address < 0x8000:
		return m.mbc.Read(address)
	case address < 0xA000:
		return m.PPU.ReadVRAM(address)
	case address < 0xC000:
		return m.mbc.Read(address)
	case address < 0xE000:
		return m.wram[address-0xC000]
	case address < 0xFE00:
		// Echo RAM aliases work RAM.
		return m.wram[address-0x2000-0xC000]
	case address <= addr.OAMEnd:
		return m.PPU.ReadOAM(address)
	case address < 0xFF00:
		// Unusable region.
		return 0xFF
	case address < 0xFF80:
		return m.readIO(address)
	case address < 0xFFFF:
		return m.hram[address-0xFF80]
	default:
		return m.interruptEnable
	}
}

func (m *MMU) decodeWrite(address uint16, value uint8) {
	switch {
	case address < 0x8000:
		m.mbc.Write(address, value)
	case address < 0xA000:
		m.PPU.WriteVRAM(address, value)
	case address < 0xC000:
		m.mbc.Write(address, value)
	case address < 0xE000:
		m.wram[address-0xC000] = value
	case address < 0xFE00:
		m.wram[address-0x2000-0xC000] = value
	case address <= addr.OAMEnd:
		m.PPU.WriteOAM(address, value)
	case address < 0xFF00:
		// Unusable region: writes are dropped.
	case address < 0xFF80:
		m.writeIO(address, value)
	case address < 0xFFFF:
		m.hram[address-0xFF80] = value
	default:
		m.interruptEnable = value
	}
}

func (m *MMU) readIO(address uint16) uint8 {
	switch {
	case address == addr.P1:
		return m.Joypad.Read()
	case address == addr.SB || address == addr.SC:
		return m.Serial.Read(address)
	case address >= addr.DIV && address <= addr.TAC:
		return m.Timer.Read(address)
	case address == addr.IF:
		// The upper 3 bits are unwired and always read 1.
		return m.interruptFlag | 0xE0
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		return m.APU.ReadRegister(address)
	case address == addr.DMA:
		return m.dmaBase
	case address >= addr.LCDC && address <= addr.WX:
		return m.PPU.ReadRegister(address)
	default:
		slog.Warn("Unhandled I/O read", "addr", fmt.Sprintf("0x%04X", address))
		return 0xFF
	}
}

func (m *MMU) writeIO(address uint16, value uint8) {
	switch {
	case address == addr.P1:
		m.Joypad.Write(value)
	case address == addr.SB || address == addr.SC:
		m.Serial.Write(address, value)
	case address >= addr.DIV && address <= addr.TAC:
		m.Timer.Write(address, value)
	case address == addr.IF:
		m.interruptFlag = value & 0x1F
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		m.APU.WriteRegister(address, value)
	case address == addr.DMA:
		// Latch the source page; the copy starts after a short delay and
		// moves one byte per machine cycle.
		m.dmaActive = true
		m.dmaBase = value
		m.dmaIndex = 0
		m.dmaDelay = 2
	case address >= addr.LCDC && address <= addr.WX:
		m.PPU.WriteRegister(address, value)
	default:
		slog.Warn("Unhandled I/O write",
			"addr", fmt.Sprintf("0x%04X", address),
			"value", fmt.Sprintf("0x%02X", value))
	}
}

// Package cpu implements the SM83 core. Every memory access an instruction
// performs goes through the MMU's timed reads and writes, so the rest of the
// machine advances in lockstep with execution; internal ALU and branch delays
// are modelled as bus ticks with no transaction.
package cpu

import (
	"math/bits"

	"github.com/valerio/go-dotmatrix/dotmatrix/addr"
	"github.com/valerio/go-dotmatrix/dotmatrix/bit"
	"github.com/valerio/go-dotmatrix/dotmatrix/memory"
)

// CPU holds the SM83 register file and interrupt state.
type CPU struct {
	mem *memory.MMU

	a, f uint8
	b, c uint8
	d, e uint8
	h, l uint8
	sp   uint16
	pc   uint16

	interruptsEnabled bool // IME
	eiCountdown       int  // pending IME enable from EI
	halted            bool
	haltBugArmed      bool
}

// New returns a CPU in the post-boot state, as left by the boot ROM.
func New(mem *memory.MMU) *CPU {
	return &CPU{
		mem: mem,
		a:   0x01,
		f:   0xB0,
		b:   0x00,
		c:   0x13,
		d:   0x00,
		e:   0xD8,
		h:   0x01,
		l:   0x4D,
		sp:  0xFFFE,
		pc:  0x0100,
	}
}

// PC returns the current program counter.
func (c *CPU) PC() uint16 {
	return c.pc
}

// Step advances by one instruction, one interrupt service, or one halted
// cycle. It returns an error only for the fatal illegal opcodes.
func (c *CPU) Step() error {
	// EI takes effect after the instruction that follows it.
	if c.eiCountdown > 0 {
		c.eiCountdown--
		if c.eiCountdown == 0 {
			c.interruptsEnabled = true
		}
	}

	if c.halted {
		c.mem.Tick()
		if c.mem.PendingInterrupts() == 0 {
			return nil
		}
		c.halted = false
	}

	if pending := c.mem.PendingInterrupts(); c.interruptsEnabled && pending != 0 {
		c.serviceInterrupt(pending)
		return nil
	}

	fetchPC := c.pc
	opcode := c.fetchByte()
	return c.execute(opcode, fetchPC)
}

// serviceInterrupt jumps to the handler of the lowest pending bit.
// Costs five machine cycles.
func (c *CPU) serviceInterrupt(pending uint8) {
	c.mem.Tick()
	c.mem.Tick()

	c.interruptsEnabled = false
	c.pushWord(c.pc)
	c.mem.Tick()

	irq := addr.Interrupt(bits.TrailingZeros8(pending))
	c.mem.ClearInterrupt(irq)
	c.pc = irq.Vector()
}

// halt enters low-power mode, or arms the halt bug when an interrupt is
// already pending with IME off: the next opcode byte is then fetched without
// advancing PC.
func (c *CPU) halt() {
	if !c.interruptsEnabled && c.mem.PendingInterrupts() != 0 {
		c.haltBugArmed = true
		return
	}
	c.halted = true
}

// fetchByte reads the byte at PC and advances it, unless the halt bug is
// armed, in which case PC stays put for this one fetch.
func (c *CPU) fetchByte() uint8 {
	value := c.mem.Read(c.pc)
	if c.haltBugArmed {
		c.haltBugArmed = false
	} else {
		c.pc++
	}
	return value
}

// fetchWord reads a little-endian word at PC.
func (c *CPU) fetchWord() uint16 {
	low := c.fetchByte()
	high := c.fetchByte()
	return bit.Combine(high, low)
}

// pushWord writes a word onto the stack, high byte first.
func (c *CPU) pushWord(value uint16) {
	c.sp--
	c.mem.Write(c.sp, bit.High(value))
	c.sp--
	c.mem.Write(c.sp, bit.Low(value))
}

// popWord reads a word off the stack.
func (c *CPU) popWord() uint16 {
	low := c.mem.Read(c.sp)
	c.sp++
	high := c.mem.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

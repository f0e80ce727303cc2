package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-dotmatrix/dotmatrix/addr"
)

func TestInterrupt_ServiceJumpsToVector(t *testing.T) {
	cpu, mmu := newTestCPU()
	loadProgram(cpu, mmu, 0x00)
	cpu.sp = 0xFFFE
	cpu.interruptsEnabled = true

	mmu.RawWrite(addr.IE, 0x04)
	mmu.RequestInterrupt(addr.TimerInterrupt)

	before := mmu.Cycles()
	require.NoError(t, cpu.Step())

	assert.Equal(t, uint16(0x50), cpu.pc)
	assert.Equal(t, before+5, mmu.Cycles(), "service costs five cycles")
	assert.False(t, cpu.interruptsEnabled)
	assert.Equal(t, uint8(0xE0), mmu.RawRead(addr.IF), "serviced bit cleared")
	assert.Equal(t, uint16(0xC000), mmu.ReadWord(0xFFFC), "interrupted PC pushed")
}

func TestInterrupt_PriorityLowestBitFirst(t *testing.T) {
	cpu, mmu := newTestCPU()
	loadProgram(cpu, mmu, 0x00)
	cpu.sp = 0xFFFE
	cpu.interruptsEnabled = true

	mmu.RawWrite(addr.IE, 0x1F)
	mmu.RequestInterrupt(addr.SerialInterrupt)
	mmu.RequestInterrupt(addr.VBlankInterrupt)

	require.NoError(t, cpu.Step())
	assert.Equal(t, uint16(0x40), cpu.pc, "VBlank wins over serial")

	// The serial bit is still pending for the next service.
	assert.Equal(t, uint8(0xE8), mmu.RawRead(addr.IF))
}

func TestInterrupt_IMEOffDoesNotService(t *testing.T) {
	cpu, mmu := newTestCPU()
	loadProgram(cpu, mmu, 0x00)

	mmu.RawWrite(addr.IE, 0x01)
	mmu.RequestInterrupt(addr.VBlankInterrupt)

	require.NoError(t, cpu.Step())
	assert.Equal(t, uint16(0xC001), cpu.pc, "NOP executed instead")
}

func TestInterrupt_EIDelay(t *testing.T) {
	cpu, mmu := newTestCPU()
	loadProgram(cpu, mmu, 0xFB, 0x00, 0x00) // EI; NOP; NOP
	cpu.sp = 0xFFFE

	mmu.RawWrite(addr.IE, 0x01)
	mmu.RequestInterrupt(addr.VBlankInterrupt)

	require.NoError(t, cpu.Step()) // EI
	assert.False(t, cpu.interruptsEnabled)

	require.NoError(t, cpu.Step()) // the following instruction still runs
	assert.Equal(t, uint16(0xC002), cpu.pc)
	assert.False(t, cpu.interruptsEnabled)

	require.NoError(t, cpu.Step()) // now the interrupt is serviced
	assert.Equal(t, uint16(0x40), cpu.pc)
}

func TestInterrupt_DICancelsPendingEnable(t *testing.T) {
	cpu, mmu := newTestCPU()
	loadProgram(cpu, mmu, 0xFB, 0xF3, 0x00) // EI; DI; NOP

	require.NoError(t, cpu.Step())
	require.NoError(t, cpu.Step())
	require.NoError(t, cpu.Step())
	assert.False(t, cpu.interruptsEnabled)
}

func TestInterrupt_HaltWakesOnPending(t *testing.T) {
	cpu, mmu := newTestCPU()
	loadProgram(cpu, mmu, 0x76, 0x00) // HALT; NOP

	require.NoError(t, cpu.Step())
	assert.True(t, cpu.halted)

	// Nothing pending: the CPU just burns cycles.
	before := mmu.Cycles()
	require.NoError(t, cpu.Step())
	require.NoError(t, cpu.Step())
	assert.Equal(t, before+2, mmu.Cycles())
	assert.True(t, cpu.halted)

	// A pending interrupt with IME off wakes without servicing.
	mmu.RawWrite(addr.IE, 0x01)
	mmu.RequestInterrupt(addr.VBlankInterrupt)
	require.NoError(t, cpu.Step())
	assert.False(t, cpu.halted)
	assert.Equal(t, uint16(0xC002), cpu.pc, "execution resumed past HALT")
}

func TestInterrupt_HaltBug(t *testing.T) {
	cpu, mmu := newTestCPU()
	// HALT with IME off and an interrupt pending: the next opcode byte is
	// fetched twice. INC A at 0xC001 therefore runs two times.
	loadProgram(cpu, mmu, 0x76, 0x3C, 0x00) // HALT; INC A; NOP
	cpu.a = 0

	mmu.RawWrite(addr.IE, 0x01)
	mmu.RequestInterrupt(addr.VBlankInterrupt)

	require.NoError(t, cpu.Step()) // HALT arms the bug, does not halt
	assert.False(t, cpu.halted)
	assert.True(t, cpu.haltBugArmed)

	require.NoError(t, cpu.Step()) // INC A without PC advance
	assert.Equal(t, uint8(1), cpu.a)
	assert.Equal(t, uint16(0xC001), cpu.pc)
	assert.False(t, cpu.haltBugArmed, "the bug fires exactly once")

	require.NoError(t, cpu.Step()) // INC A again, this time advancing
	assert.Equal(t, uint8(2), cpu.a)
	assert.Equal(t, uint16(0xC002), cpu.pc)
}

func TestInterrupt_HaltWithIMEServicesOnWake(t *testing.T) {
	cpu, mmu := newTestCPU()
	loadProgram(cpu, mmu, 0x76, 0x00) // HALT; NOP
	cpu.sp = 0xFFFE
	cpu.interruptsEnabled = true

	require.NoError(t, cpu.Step())
	assert.True(t, cpu.halted)

	mmu.RawWrite(addr.IE, 0x04)
	mmu.RequestInterrupt(addr.TimerInterrupt)

	require.NoError(t, cpu.Step())
	assert.False(t, cpu.halted)
	assert.Equal(t, uint16(0x50), cpu.pc)
	assert.Equal(t, uint16(0xC001), mmu.ReadWord(0xFFFC), "PC after HALT pushed")
}

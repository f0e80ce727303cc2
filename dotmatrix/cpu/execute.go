package cpu

import (
	"fmt"

	"github.com/valerio/go-dotmatrix/dotmatrix/bit"
)

// execute runs one decoded instruction. The timed bus accesses inside each
// case, plus explicit Tick calls for internal delays, reproduce the SM83
// cycle counts; there is no separate cycle table.
func (c *CPU) execute(opcode uint8, fetchPC uint16) error {
	switch {
	case opcode == 0x76:
		c.halt()
		return nil

	case opcode >= 0x40 && opcode < 0x80:
		// LD r,r' with DDD in bits 5-3 and SSS in bits 2-0.
		c.writeOperand(opcode>>3, c.readOperand(opcode))
		return nil

	case opcode >= 0x80 && opcode < 0xC0:
		// ALU A,r with the operation in bits 5-3.
		value := c.readOperand(opcode)
		switch (opcode >> 3) & 0x07 {
		case 0:
			c.addToA(value)
		case 1:
			c.adc(value)
		case 2:
			c.sub(value)
		case 3:
			c.sbc(value)
		case 4:
			c.and(value)
		case 5:
			c.xor(value)
		case 6:
			c.or(value)
		case 7:
			c.cp(value)
		}
		return nil
	}

	switch opcode {
	case 0x00: // NOP

	case 0x01: // LD BC,nn
		c.setBC(c.fetchWord())
	case 0x11: // LD DE,nn
		c.setDE(c.fetchWord())
	case 0x21: // LD HL,nn
		c.setHL(c.fetchWord())
	case 0x31: // LD SP,nn
		c.sp = c.fetchWord()

	case 0x02: // LD (BC),A
		c.mem.Write(c.getBC(), c.a)
	case 0x12: // LD (DE),A
		c.mem.Write(c.getDE(), c.a)
	case 0x22: // LD (HL+),A
		c.mem.Write(c.getHL(), c.a)
		c.setHL(c.getHL() + 1)
	case 0x32: // LD (HL-),A
		c.mem.Write(c.getHL(), c.a)
		c.setHL(c.getHL() - 1)

	case 0x0A: // LD A,(BC)
		c.a = c.mem.Read(c.getBC())
	case 0x1A: // LD A,(DE)
		c.a = c.mem.Read(c.getDE())
	case 0x2A: // LD A,(HL+)
		c.a = c.mem.Read(c.getHL())
		c.setHL(c.getHL() + 1)
	case 0x3A: // LD A,(HL-)
		c.a = c.mem.Read(c.getHL())
		c.setHL(c.getHL() - 1)

	case 0x03: // INC BC
		c.mem.Tick()
		c.setBC(c.getBC() + 1)
	case 0x13: // INC DE
		c.mem.Tick()
		c.setDE(c.getDE() + 1)
	case 0x23: // INC HL
		c.mem.Tick()
		c.setHL(c.getHL() + 1)
	case 0x33: // INC SP
		c.mem.Tick()
		c.sp++

	case 0x0B: // DEC BC
		c.mem.Tick()
		c.setBC(c.getBC() - 1)
	case 0x1B: // DEC DE
		c.mem.Tick()
		c.setDE(c.getDE() - 1)
	case 0x2B: // DEC HL
		c.mem.Tick()
		c.setHL(c.getHL() - 1)
	case 0x3B: // DEC SP
		c.mem.Tick()
		c.sp--

	case 0x04: // INC B
		c.b = c.inc8(c.b)
	case 0x0C: // INC C
		c.c = c.inc8(c.c)
	case 0x14: // INC D
		c.d = c.inc8(c.d)
	case 0x1C: // INC E
		c.e = c.inc8(c.e)
	case 0x24: // INC H
		c.h = c.inc8(c.h)
	case 0x2C: // INC L
		c.l = c.inc8(c.l)
	case 0x3C: // INC A
		c.a = c.inc8(c.a)
	case 0x34: // INC (HL)
		hl := c.getHL()
		c.mem.Write(hl, c.inc8(c.mem.Read(hl)))

	case 0x05: // DEC B
		c.b = c.dec8(c.b)
	case 0x0D: // DEC C
		c.c = c.dec8(c.c)
	case 0x15: // DEC D
		c.d = c.dec8(c.d)
	case 0x1D: // DEC E
		c.e = c.dec8(c.e)
	case 0x25: // DEC H
		c.h = c.dec8(c.h)
	case 0x2D: // DEC L
		c.l = c.dec8(c.l)
	case 0x3D: // DEC A
		c.a = c.dec8(c.a)
	case 0x35: // DEC (HL)
		hl := c.getHL()
		c.mem.Write(hl, c.dec8(c.mem.Read(hl)))

	case 0x06: // LD B,n
		c.b = c.fetchByte()
	case 0x0E: // LD C,n
		c.c = c.fetchByte()
	case 0x16: // LD D,n
		c.d = c.fetchByte()
	case 0x1E: // LD E,n
		c.e = c.fetchByte()
	case 0x26: // LD H,n
		c.h = c.fetchByte()
	case 0x2E: // LD L,n
		c.l = c.fetchByte()
	case 0x3E: // LD A,n
		c.a = c.fetchByte()
	case 0x36: // LD (HL),n
		c.mem.Write(c.getHL(), c.fetchByte())

	case 0x07: // RLCA
		c.rlca()
	case 0x0F: // RRCA
		c.rrca()
	case 0x17: // RLA
		c.rla()
	case 0x1F: // RRA
		c.rra()

	case 0x08: // LD (nn),SP
		c.mem.WriteWord(c.fetchWord(), c.sp)

	case 0x09: // ADD HL,BC
		c.mem.Tick()
		c.addToHL(c.getBC())
	case 0x19: // ADD HL,DE
		c.mem.Tick()
		c.addToHL(c.getDE())
	case 0x29: // ADD HL,HL
		c.mem.Tick()
		c.addToHL(c.getHL())
	case 0x39: // ADD HL,SP
		c.mem.Tick()
		c.addToHL(c.sp)

	case 0x10: // STOP consumes the byte that follows
		c.fetchByte()

	case 0x18: // JR n
		offset := c.fetchByte()
		c.mem.Tick()
		c.pc += uint16(int16(int8(offset)))
	case 0x20, 0x28, 0x30, 0x38: // JR cc,n
		offset := c.fetchByte()
		if c.jumpCondition(opcode >> 3) {
			c.mem.Tick()
			c.pc += uint16(int16(int8(offset)))
		}

	case 0x27: // DAA
		c.daa()
	case 0x2F: // CPL
		c.a = ^c.a
		c.setFlag(subFlag)
		c.setFlag(halfCarryFlag)
	case 0x37: // SCF
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.setFlag(carryFlag)
	case 0x3F: // CCF
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))

	case 0xC0, 0xC8, 0xD0, 0xD8: // RET cc
		c.mem.Tick()
		if c.jumpCondition(opcode >> 3) {
			c.mem.Tick()
			c.pc = c.popWord()
		}
	case 0xC9: // RET
		c.pc = c.popWord()
		c.mem.Tick()
	case 0xD9: // RETI
		c.pc = c.popWord()
		c.mem.Tick()
		c.interruptsEnabled = true

	case 0xC1: // POP BC
		c.setBC(c.popWord())
	case 0xD1: // POP DE
		c.setDE(c.popWord())
	case 0xE1: // POP HL
		c.setHL(c.popWord())
	case 0xF1: // POP AF
		c.setAF(c.popWord())

	case 0xC5: // PUSH BC
		c.mem.Tick()
		c.pushWord(c.getBC())
	case 0xD5: // PUSH DE
		c.mem.Tick()
		c.pushWord(c.getDE())
	case 0xE5: // PUSH HL
		c.mem.Tick()
		c.pushWord(c.getHL())
	case 0xF5: // PUSH AF
		c.mem.Tick()
		c.pushWord(c.getAF())

	case 0xC3: // JP nn
		target := c.fetchWord()
		c.mem.Tick()
		c.pc = target
	case 0xC2, 0xCA, 0xD2, 0xDA: // JP cc,nn
		target := c.fetchWord()
		if c.jumpCondition(opcode >> 3) {
			c.mem.Tick()
			c.pc = target
		}
	case 0xE9: // JP HL
		c.pc = c.getHL()

	case 0xCD: // CALL nn
		target := c.fetchWord()
		c.mem.Tick()
		c.pushWord(c.pc)
		c.pc = target
	case 0xC4, 0xCC, 0xD4, 0xDC: // CALL cc,nn
		target := c.fetchWord()
		if c.jumpCondition(opcode >> 3) {
			c.mem.Tick()
			c.pushWord(c.pc)
			c.pc = target
		}

	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF: // RST
		c.mem.Tick()
		c.pushWord(c.pc)
		c.pc = uint16(opcode & 0x38)

	case 0xC6: // ADD A,n
		c.addToA(c.fetchByte())
	case 0xCE: // ADC A,n
		c.adc(c.fetchByte())
	case 0xD6: // SUB n
		c.sub(c.fetchByte())
	case 0xDE: // SBC A,n
		c.sbc(c.fetchByte())
	case 0xE6: // AND n
		c.and(c.fetchByte())
	case 0xEE: // XOR n
		c.xor(c.fetchByte())
	case 0xF6: // OR n
		c.or(c.fetchByte())
	case 0xFE: // CP n
		c.cp(c.fetchByte())

	case 0xCB:
		c.executeCB(c.fetchByte())

	case 0xE0: // LDH (n),A
		c.mem.Write(0xFF00|uint16(c.fetchByte()), c.a)
	case 0xF0: // LDH A,(n)
		c.a = c.mem.Read(0xFF00 | uint16(c.fetchByte()))
	case 0xE2: // LD (C),A
		c.mem.Write(0xFF00|uint16(c.c), c.a)
	case 0xF2: // LD A,(C)
		c.a = c.mem.Read(0xFF00 | uint16(c.c))
	case 0xEA: // LD (nn),A
		c.mem.Write(c.fetchWord(), c.a)
	case 0xFA: // LD A,(nn)
		c.a = c.mem.Read(c.fetchWord())

	case 0xE8: // ADD SP,i8
		offset := c.fetchByte()
		c.mem.Tick()
		c.mem.Tick()
		c.sp = c.addSPOffset(offset)
	case 0xF8: // LD HL,SP+i8
		offset := c.fetchByte()
		c.mem.Tick()
		c.setHL(c.addSPOffset(offset))
	case 0xF9: // LD SP,HL
		c.mem.Tick()
		c.sp = c.getHL()

	case 0xF3: // DI
		c.interruptsEnabled = false
		c.eiCountdown = 0
	case 0xFB: // EI
		if !c.interruptsEnabled && c.eiCountdown == 0 {
			c.eiCountdown = 2
		}

	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		return fmt.Errorf("illegal opcode 0x%02X at PC 0x%04X", opcode, fetchPC)
	}

	return nil
}

// executeCB runs a CB-prefixed instruction. Operations on (HL) are
// read-modify-write except BIT, which only reads.
func (c *CPU) executeCB(opcode uint8) {
	target := opcode & 0x07
	index := (opcode >> 3) & 0x07

	switch {
	case opcode < 0x40:
		value := c.readOperand(target)
		var result uint8
		switch index {
		case 0: // RLC
			c.setFlagToCondition(carryFlag, value > 0x7F)
			result = value<<1 | value>>7
		case 1: // RRC
			c.setFlagToCondition(carryFlag, value&1 == 1)
			result = value>>1 | value<<7
		case 2: // RL
			carry := c.flagToBit(carryFlag)
			c.setFlagToCondition(carryFlag, value > 0x7F)
			result = value<<1 | carry
		case 3: // RR
			carry := c.flagToBit(carryFlag) << 7
			c.setFlagToCondition(carryFlag, value&1 == 1)
			result = value>>1 | carry
		case 4: // SLA
			c.setFlagToCondition(carryFlag, value > 0x7F)
			result = value << 1
		case 5: // SRA
			c.setFlagToCondition(carryFlag, value&1 == 1)
			result = value>>1 | value&0x80
		case 6: // SWAP
			c.resetFlag(carryFlag)
			result = value<<4 | value>>4
		case 7: // SRL
			c.setFlagToCondition(carryFlag, value&1 == 1)
			result = value >> 1
		}
		c.setFlagToCondition(zeroFlag, result == 0)
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.writeOperand(target, result)

	case opcode < 0x80: // BIT n,r
		value := c.readOperand(target)
		c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
		c.resetFlag(subFlag)
		c.setFlag(halfCarryFlag)

	case opcode < 0xC0: // RES n,r
		c.writeOperand(target, bit.Reset(index, c.readOperand(target)))

	default: // SET n,r
		c.writeOperand(target, bit.Set(index, c.readOperand(target)))
	}
}

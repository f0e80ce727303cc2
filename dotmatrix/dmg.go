// Package dotmatrix is a cycle-accurate emulator core for the original
// monochrome handheld. The CPU drives everything: each timed bus access
// advances the PPU, timer, and serial port by one machine cycle, so
// peripheral state lines up with execution at machine-cycle granularity.
package dotmatrix

import (
	"log/slog"
	"os"

	"github.com/valerio/go-dotmatrix/dotmatrix/cpu"
	"github.com/valerio/go-dotmatrix/dotmatrix/memory"
	"github.com/valerio/go-dotmatrix/dotmatrix/video"
)

// DMG is the host-facing handle over one emulated machine.
type DMG struct {
	cpu *cpu.CPU
	mem *memory.MMU

	frameCount uint64
}

// New creates an emulator from a ROM image. Fails for headers declaring an
// unsupported cartridge type or RAM size.
func New(rom []byte) (*DMG, error) {
	cart, err := memory.NewCartridgeWithData(rom)
	if err != nil {
		return nil, err
	}

	mem := memory.NewWithCartridge(cart)
	return &DMG{
		cpu: cpu.New(mem),
		mem: mem,
	}, nil
}

// NewWithFile creates an emulator from a ROM on disk.
func NewWithFile(path string) (*DMG, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded ROM data", "path", path, "size", len(data))
	return New(data)
}

// RunFrame drives the machine until the PPU enters vertical blank. Returns
// an error if execution hit an illegal opcode.
func (d *DMG) RunFrame() error {
	for !d.mem.ConsumeFrameReady() {
		if err := d.cpu.Step(); err != nil {
			return err
		}
	}
	d.frameCount++
	return nil
}

// GetPixels returns the completed 160x144 framebuffer as 0xAARRGGBB values.
// Only valid between RunFrame calls.
func (d *DMG) GetPixels() []uint32 {
	return d.mem.PPU.Framebuffer().ToSlice()
}

// Framebuffer exposes the PPU's render target for display back ends.
func (d *DMG) Framebuffer() *video.FrameBuffer {
	return d.mem.PPU.Framebuffer()
}

// UpdateButtons sets the joypad latch. Encoding: bit 7=Down, 6=Up, 5=Left,
// 4=Right, 3=Start, 2=Select, 1=B, 0=A; 0 means pressed.
func (d *DMG) UpdateButtons(pressed uint8) {
	d.mem.Joypad.SetButtons(pressed)
}

// SerialLog returns everything sent over the link port so far. Test ROMs
// report their results here.
func (d *DMG) SerialLog() string {
	return d.mem.Serial.Log()
}

// FrameCount returns how many frames RunFrame has completed.
func (d *DMG) FrameCount() uint64 {
	return d.frameCount
}

// Cycles returns the machine cycles elapsed since power-on.
func (d *DMG) Cycles() uint64 {
	return d.mem.Cycles()
}

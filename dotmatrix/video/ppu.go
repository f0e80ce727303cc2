package video

import (
	"github.com/valerio/go-dotmatrix/dotmatrix/addr"
	"github.com/valerio/go-dotmatrix/dotmatrix/bit"
)

// Mode is the PPU's current rendering stage. The values match STAT bits 1-0.
type Mode uint8

const (
	// HBlankMode (mode 0): horizontal blank until dot 455.
	HBlankMode Mode = 0
	// VBlankMode (mode 1): lines 144-153.
	VBlankMode Mode = 1
	// OAMScanMode (mode 2): sprite selection, dots 0-79.
	OAMScanMode Mode = 2
	// DrawingMode (mode 3): pixels are pushed to the LCD.
	DrawingMode Mode = 3
)

// LCDC bit indices.
const (
	lcdcBGEnable      = 0
	lcdcSpriteEnable  = 1
	lcdcSpriteSize    = 2
	lcdcBGTileMap     = 3
	lcdcTileData      = 4
	lcdcWindowEnable  = 5
	lcdcWindowTileMap = 6
	lcdcDisplayEnable = 7
)

// STAT bit indices.
const (
	statHBlankIRQ  = 3
	statVBlankIRQ  = 4
	statOAMIRQ     = 5
	statLycIRQ     = 6
	statLycEqualLY = 2
)

// PPU owns VRAM, OAM, and the LCD register file, and renders one dot per
// master clock through the background FIFO and the per-line sprite buffer.
type PPU struct {
	vram [0x2000]uint8
	oam  [160]uint8

	lcdc uint8
	stat uint8
	scy  uint8
	scx  uint8
	ly   uint8
	lyc  uint8
	bgp  uint8
	obp0 uint8
	obp1 uint8
	wy   uint8
	wx   uint8

	dots int // 0..455 within the scanline
	mode Mode
	lx   int // screen X of the next pixel to emit

	bgFIFO     pixelFIFO
	fetch      fetcher
	spriteLine [FramebufferWidth]*Pixel
	discarded  uint8 // SCX mod 8 pixels dropped at line start
	windowLine uint8 // advances only on lines where window pixels were drawn

	statLine    bool // interrupt fires on the rising edge of this signal
	framebuffer *FrameBuffer
}

// New creates a PPU in the post-boot state.
func New() *PPU {
	return &PPU{
		lcdc:        0x91,
		stat:        0x85,
		bgp:         0xFC,
		obp0:        0xFF,
		obp1:        0xFF,
		mode:        OAMScanMode,
		framebuffer: NewFrameBuffer(),
	}
}

// Framebuffer returns the off-screen target. Only stable between frames.
func (p *PPU) Framebuffer() *FrameBuffer {
	return p.framebuffer
}

// Mode returns the current rendering stage.
func (p *PPU) Mode() Mode {
	return p.mode
}

// LY returns the current scanline.
func (p *PPU) LY() uint8 {
	return p.ly
}

// Step advances the PPU by the given number of dots (master clocks) and
// reports whether the VBlank and/or STAT interrupts should be requested.
func (p *PPU) Step(dots int) (vblankIRQ, statIRQ bool) {
	for i := 0; i < dots; i++ {
		p.dots++

		if p.ly == p.lyc {
			p.stat = bit.Set(statLycEqualLY, p.stat)
		} else {
			p.stat = bit.Reset(statLycEqualLY, p.stat)
		}

		// The STAT line ORs all enabled sources; only its rising edge
		// requests the interrupt.
		line := (bit.IsSet(statLycIRQ, p.stat) && p.ly == p.lyc) ||
			(bit.IsSet(statOAMIRQ, p.stat) && p.mode == OAMScanMode) ||
			(bit.IsSet(statVBlankIRQ, p.stat) && p.mode == VBlankMode) ||
			(bit.IsSet(statHBlankIRQ, p.stat) && p.mode == HBlankMode)
		if line && !p.statLine {
			statIRQ = true
		}
		p.statLine = line

		switch p.mode {
		case OAMScanMode:
			if p.dots >= 80 {
				p.beginScanline()
			}
		case DrawingMode:
			p.drawDot()
		case HBlankMode:
			if p.dots >= 456 {
				p.dots = 0
				p.ly++
				if p.ly == 144 {
					vblankIRQ = true
					p.windowLine = 0
					p.mode = VBlankMode
				} else {
					p.mode = OAMScanMode
				}
			}
		case VBlankMode:
			if p.dots >= 456 {
				p.dots = 0
				p.ly++
				if p.ly > 153 {
					p.ly = 0
					p.mode = OAMScanMode
				}
			}
		}
	}
	return vblankIRQ, statIRQ
}

// beginScanline runs the OAM scan and arms the pixel pipeline.
func (p *PPU) beginScanline() {
	tall := bit.IsSet(lcdcSpriteSize, p.lcdc)
	sprites := scanOAM(p.oam[:], p.ly, tall)
	buildSpriteLine(&p.spriteLine, sprites, p.vram[:], p.ly, tall)

	p.fetch.reset(p.scx)
	p.bgFIFO.Clear()
	p.discarded = p.scx % 8
	p.lx = 0
	p.mode = DrawingMode
}

// drawDot advances the fetcher one dot and tries to emit one pixel.
func (p *PPU) drawDot() {
	windowEnabled := bit.IsSet(lcdcWindowEnable, p.lcdc)
	if windowEnabled && !p.fetch.fetchingWindow &&
		p.ly >= p.wy && p.lx+7 >= int(p.wx) {
		p.fetch.startWindow(p.windowLine)
		p.bgFIFO.Clear()
	}

	p.fetch.tick(&p.bgFIFO, p.vram[:], p.lcdc, p.scy, p.ly)

	bgPixel, ok := p.bgFIFO.Pop()
	if !ok {
		return
	}
	if !bit.IsSet(lcdcBGEnable, p.lcdc) {
		bgPixel.color = 0
	}

	if p.discarded > 0 {
		p.discarded--
		return
	}

	final := bgPixel
	if sprite := p.spriteLine[p.lx]; sprite != nil && bit.IsSet(lcdcSpriteEnable, p.lcdc) {
		if !sprite.bgPriority || bgPixel.color == 0 {
			final = *sprite
		}
	}

	p.framebuffer.SetPixel(p.lx, int(p.ly), p.resolveColor(final))
	p.lx++

	if p.lx >= FramebufferWidth {
		if p.fetch.fetchingWindow {
			p.windowLine++
		}
		p.mode = HBlankMode
	}
}

// resolveColor runs a pipeline pixel through its palette register.
func (p *PPU) resolveColor(px Pixel) GBColor {
	var palette uint8
	switch px.palette {
	case paletteOBP0:
		palette = p.obp0
	case paletteOBP1:
		palette = p.obp1
	default:
		palette = p.bgp
	}
	shade := (palette >> (px.color * 2)) & 0x03
	return ShadeToColor(shade)
}

// ReadVRAM reads video memory. Addresses are masked onto the 8KB array.
func (p *PPU) ReadVRAM(address uint16) uint8 {
	return p.vram[address&0x1FFF]
}

// WriteVRAM writes video memory.
func (p *PPU) WriteVRAM(address uint16, value uint8) {
	p.vram[address&0x1FFF] = value
}

// ReadOAM reads object attribute memory.
func (p *PPU) ReadOAM(address uint16) uint8 {
	return p.oam[(address-addr.OAMStart)%160]
}

// WriteOAM writes object attribute memory.
func (p *PPU) WriteOAM(address uint16, value uint8) {
	p.oam[(address-addr.OAMStart)%160] = value
}

// ReadRegister reads an LCD register.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return 0x80 | p.stat&0x7C | uint8(p.mode)
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	default:
		return 0xFF
	}
}

// WriteRegister writes an LCD register. LY is read-only and STAT's low three
// bits are owned by the PPU.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case addr.LCDC:
		p.lcdc = value
	case addr.STAT:
		p.stat = p.stat&0x07 | value&0xF8
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LY:
		// read-only
	case addr.LYC:
		p.lyc = value
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	}
}

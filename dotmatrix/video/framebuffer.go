package video

// GBColor is a 0xAARRGGBB packed pixel.
type GBColor uint32

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
	FramebufferSize   = FramebufferWidth * FramebufferHeight
)

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0xFFAAAAAA
	DarkGreyColor  GBColor = 0xFF555555
	BlackColor     GBColor = 0xFF000000
)

// shades maps a resolved 2-bit palette entry to its display color.
var shades = [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// ShadeToColor maps a palette shade index (0..3) to a packed color.
func ShadeToColor(shade uint8) GBColor {
	return shades[shade&0x03]
}

// ColorToShade is the inverse of ShadeToColor, used by renderers and tests.
func ColorToShade(color uint32) uint8 {
	switch GBColor(color) {
	case WhiteColor:
		return 0
	case LightGreyColor:
		return 1
	case DarkGreyColor:
		return 2
	default:
		return 3
	}
}

// FrameBuffer is the 160x144 off-screen target the PPU draws into. It is
// overwritten in place every frame and read by the host between frames.
type FrameBuffer struct {
	buffer []uint32
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		buffer: make([]uint32, FramebufferSize),
	}
}

func (fb *FrameBuffer) GetPixel(x, y int) uint32 {
	return fb.buffer[y*FramebufferWidth+x]
}

func (fb *FrameBuffer) SetPixel(x, y int, color GBColor) {
	fb.buffer[y*FramebufferWidth+x] = uint32(color)
}

// ToSlice exposes the raw pixels. The slice aliases the framebuffer, so it is
// only valid to read between frames.
func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// ToGrayscale converts the framebuffer to shade indices (0-3) for compact
// comparison in tests.
func (fb *FrameBuffer) ToGrayscale() []byte {
	data := make([]byte, len(fb.buffer))
	for i, pixel := range fb.buffer {
		data[i] = ColorToShade(pixel)
	}
	return data
}

// Clear resets the framebuffer to white, the LCD's idle shade.
func (fb *FrameBuffer) Clear() {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(WhiteColor)
	}
}

//go:build !sdl2

package display

import (
	"errors"

	"github.com/valerio/go-dotmatrix/dotmatrix/video"
)

// Window stub for builds without SDL2. Compile with -tags sdl2 and the SDL2
// development libraries installed to get the real window.
type Window struct{}

func NewWindow() *Window {
	return &Window{}
}

func (w *Window) Init(title string, scale int) error {
	return errors.New("SDL2 display not available - compile with -tags sdl2")
}

func (w *Window) Update(frame *video.FrameBuffer) (pressed uint8, quit bool) {
	return 0xFF, true
}

func (w *Window) Cleanup() {}

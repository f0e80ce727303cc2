//go:build sdl2

package display

import (
	"fmt"
	"unsafe"

	"github.com/valerio/go-dotmatrix/dotmatrix/video"
	"github.com/veandco/go-sdl2/sdl"
)

// Window renders frames into an SDL2 window. Building this requires the SDL2
// development libraries; default builds get the stub instead (build tag sdl2).
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	pressed uint8
}

// NewWindow creates an uninitialized SDL2 window handle.
func NewWindow() *Window {
	return &Window{pressed: 0xFF}
}

// Init opens the window at the given integer scale factor.
func (w *Window) Init(title string, scale int) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %v", err)
	}

	window, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*scale), int32(video.FramebufferHeight*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return fmt.Errorf("failed to create window: %v", err)
	}
	w.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %v", err)
	}
	w.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth, video.FramebufferHeight,
	)
	if err != nil {
		return fmt.Errorf("failed to create texture: %v", err)
	}
	w.texture = texture

	return nil
}

// Update polls input, renders the frame, and returns the current joypad
// latch plus whether the user asked to quit.
func (w *Window) Update(frame *video.FrameBuffer) (pressed uint8, quit bool) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			quit = true
		case *sdl.KeyboardEvent:
			if ev.Keysym.Sym == sdl.K_ESCAPE {
				quit = true
				break
			}
			if button, ok := mapKey(ev.Keysym.Sym); ok {
				if ev.Type == sdl.KEYDOWN {
					w.pressed &= ^button
				} else if ev.Type == sdl.KEYUP {
					w.pressed |= button
				}
			}
		}
	}

	pixels := frame.ToSlice()
	w.texture.Update(nil, unsafe.Pointer(&pixels[0]), video.FramebufferWidth*4)
	w.renderer.Clear()
	w.renderer.Copy(w.texture, nil, nil)
	w.renderer.Present()

	return w.pressed, quit
}

func mapKey(sym sdl.Keycode) (uint8, bool) {
	switch sym {
	case sdl.K_UP:
		return 1 << 6, true
	case sdl.K_DOWN:
		return 1 << 7, true
	case sdl.K_LEFT:
		return 1 << 5, true
	case sdl.K_RIGHT:
		return 1 << 4, true
	case sdl.K_RETURN:
		return 1 << 3, true
	case sdl.K_BACKSPACE:
		return 1 << 2, true
	case sdl.K_z:
		return 1 << 1, true
	case sdl.K_x:
		return 1 << 0, true
	}
	return 0, false
}

// Cleanup releases SDL resources.
func (w *Window) Cleanup() {
	if w.texture != nil {
		w.texture.Destroy()
	}
	if w.renderer != nil {
		w.renderer.Destroy()
	}
	if w.window != nil {
		w.window.Destroy()
	}
	sdl.Quit()
}

package render

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-dotmatrix/dotmatrix/video"
)

const frameTime = time.Second / 60

// keyHoldDuration is how long a terminal key press counts as held. Terminals
// deliver no key-release events, so presses decay on a timer instead.
const keyHoldDuration = 120 * time.Millisecond

// Machine is the slice of the emulator the renderer drives.
type Machine interface {
	RunFrame() error
	Framebuffer() *video.FrameBuffer
	UpdateButtons(pressed uint8)
}

// Button bit positions in the joypad latch (0 = pressed).
const (
	buttonA = 1 << iota
	buttonB
	buttonSelect
	buttonStart
	buttonRight
	buttonLeft
	buttonUp
	buttonDown
)

// TerminalRenderer draws frames into a tcell screen using half-block cells,
// two pixel rows per terminal row.
type TerminalRenderer struct {
	screen  tcell.Screen
	machine Machine
	running bool

	keyExpiry map[uint8]time.Time
}

// NewTerminalRenderer initializes the terminal screen.
func NewTerminalRenderer(machine Machine) (*TerminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	return &TerminalRenderer{
		screen:    screen,
		machine:   machine,
		keyExpiry: make(map[uint8]time.Time),
	}, nil
}

// Run drives the emulator at display rate until the user quits.
func (r *TerminalRenderer) Run() error {
	defer r.screen.Fini()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			events <- r.screen.PollEvent()
		}
	}()

	r.running = true
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for r.running {
		select {
		case ev := <-events:
			r.handleEvent(ev)
		case <-ticker.C:
			r.machine.UpdateButtons(r.pressedButtons())
			if err := r.machine.RunFrame(); err != nil {
				return err
			}
			r.draw()
		}
	}
	return nil
}

func (r *TerminalRenderer) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
			r.running = false
			return
		}
		if button, ok := mapKey(ev); ok {
			r.keyExpiry[button] = time.Now().Add(keyHoldDuration)
		}
	case *tcell.EventResize:
		r.screen.Sync()
	}
}

func mapKey(ev *tcell.EventKey) (uint8, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return buttonUp, true
	case tcell.KeyDown:
		return buttonDown, true
	case tcell.KeyLeft:
		return buttonLeft, true
	case tcell.KeyRight:
		return buttonRight, true
	case tcell.KeyEnter:
		return buttonStart, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return buttonSelect, true
	}
	switch ev.Rune() {
	case 'z':
		return buttonB, true
	case 'x':
		return buttonA, true
	}
	return 0, false
}

// pressedButtons folds the still-held keys into the joypad latch byte.
func (r *TerminalRenderer) pressedButtons() uint8 {
	pressed := uint8(0xFF)
	now := time.Now()
	for button, expiry := range r.keyExpiry {
		if now.Before(expiry) {
			pressed &= ^button
		} else {
			delete(r.keyExpiry, button)
		}
	}
	return pressed
}

func (r *TerminalRenderer) draw() {
	frame := r.machine.Framebuffer().ToSlice()

	for y := 0; y < video.FramebufferHeight; y += 2 {
		for x := 0; x < video.FramebufferWidth; x++ {
			top := frame[y*video.FramebufferWidth+x]
			bottom := frame[(y+1)*video.FramebufferWidth+x]

			style := tcell.StyleDefault.
				Foreground(rgbColor(top)).
				Background(rgbColor(bottom))
			r.screen.SetContent(x, y/2, '▀', nil, style)
		}
	}
	r.screen.Show()
}

func rgbColor(pixel uint32) tcell.Color {
	return tcell.NewRGBColor(
		int32(pixel>>16&0xFF),
		int32(pixel>>8&0xFF),
		int32(pixel&0xFF),
	)
}

// FrameSnapshot renders the framebuffer as half-block text, used by headless
// mode to dump frames to disk.
func FrameSnapshot(fb *video.FrameBuffer) string {
	lines := RenderFrameToHalfBlocks(fb.ToSlice(), video.FramebufferWidth, video.FramebufferHeight)
	var out string
	for _, line := range lines {
		out += line + "\n"
	}
	slog.Debug("Rendered frame snapshot", "lines", len(lines))
	return out
}

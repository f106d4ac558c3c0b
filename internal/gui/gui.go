// Package gui implements the windowed front end of the emulator.
// It renders the machine's display buffer, maps the host keyboard onto the
// hex keypad and plays the beep tone. The machine itself performs no I/O.
package gui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrogolib/log"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/options"
)

// keypad maps host keys onto the hex keypad, the classic left-hand block:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
var keypad = map[ebiten.Key]byte{
	ebiten.KeyDigit1: 0x1, ebiten.KeyDigit2: 0x2, ebiten.KeyDigit3: 0x3, ebiten.KeyDigit4: 0xC,
	ebiten.KeyQ: 0x4, ebiten.KeyW: 0x5, ebiten.KeyE: 0x6, ebiten.KeyR: 0xD,
	ebiten.KeyA: 0x7, ebiten.KeyS: 0x8, ebiten.KeyD: 0x9, ebiten.KeyF: 0xE,
	ebiten.KeyZ: 0xA, ebiten.KeyX: 0x0, ebiten.KeyC: 0xB, ebiten.KeyV: 0xF,
}

// Game drives the machine from the ebiten game loop, one machine frame per tick.
type Game struct {
	ctx     context.Context
	logger  *log.Logger
	machine *chip8.Chip8
	beeper  *beeper

	cyclesPerFrame int
	maxFrames      int
	frames         int

	frame *ebiten.Image // cached 64x32 display image
	rgba  []byte        // scratch buffer for display image updates
}

// Run opens the window and runs the machine until the window is closed,
// the context is cancelled, the frame limit is reached or a fatal machine
// error occurs.
func Run(ctx context.Context, logger *log.Logger, machine *chip8.Chip8,
	opts options.Program) error {

	beeper, err := newBeeper()
	if err != nil {
		return fmt.Errorf("initializing audio: %w", err)
	}

	game := &Game{
		ctx:            ctx,
		logger:         logger,
		machine:        machine,
		beeper:         beeper,
		cyclesPerFrame: opts.CyclesPerFrame,
		maxFrames:      opts.MaxFrames,
		frame:          ebiten.NewImage(chip8.DisplayWidth, chip8.DisplayHeight),
		rgba:           make([]byte, chip8.DisplayWidth*chip8.DisplayHeight*4),
	}

	ebiten.SetWindowSize(chip8.DisplayWidth*opts.Scale, chip8.DisplayHeight*opts.Scale)
	ebiten.SetWindowTitle("chip8emu - " + filepath.Base(opts.Input))

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("running game loop: %w", err)
	}
	return nil
}

// Update executes one machine frame.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	g.updateKeys()

	for range g.cyclesPerFrame {
		if g.machine.WaitingForKey() {
			break
		}
		if err := g.machine.Step(); err != nil {
			return fmt.Errorf("executing cycle: %w", err)
		}
	}

	g.beeper.setPlaying(g.machine.SoundActive())

	g.frames++
	if g.maxFrames > 0 && g.frames >= g.maxFrames {
		g.logger.Info("Frame limit reached", log.Int("frames", g.frames))
		return ebiten.Termination
	}
	return nil
}

// updateKeys writes the host keyboard state into the keypad bitmap and
// completes a pending key wait with the first freshly pressed keypad key.
func (g *Game) updateKeys() {
	for key, pad := range keypad {
		g.machine.SetKey(pad, ebiten.IsKeyPressed(key))

		if g.machine.WaitingForKey() && inpututil.IsKeyJustPressed(key) {
			_ = g.machine.ResolveKey(pad)
		}
	}
}

// Draw repaints the cached display image when the machine reports a display
// change and draws it, ebiten scales it to the window size.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.machine.DisplayUpdated() {
		g.repaintFrame()
	}
	screen.DrawImage(g.frame, nil)
}

// repaintFrame converts the machine's one byte per pixel display buffer
// into the RGBA frame image.
func (g *Game) repaintFrame() {
	for i, pixel := range g.machine.Pixels() {
		var value byte
		if pixel == 1 {
			value = 0xFF
		}
		offset := i * 4
		g.rgba[offset] = value
		g.rgba[offset+1] = value
		g.rgba[offset+2] = value
		g.rgba[offset+3] = 0xFF
	}
	g.frame.WritePixels(g.rgba)
}

// Layout reports the logical screen size, the display resolution of the machine.
func (g *Game) Layout(_, _ int) (int, int) {
	return chip8.DisplayWidth, chip8.DisplayHeight
}

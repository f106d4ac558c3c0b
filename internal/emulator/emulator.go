// Package emulator orchestrates one emulated CHIP-8 session.
package emulator

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/gui"
	"github.com/retroenv/chip8emu/internal/loader"
	"github.com/retroenv/chip8emu/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// frameRate is the display refresh and pacing rate of the machine in Hz.
const frameRate = 60

// Emulator drives a CHIP-8 machine: it loads the ROM and runs the machine
// behind either the windowed or the headless front end.
type Emulator struct {
	logger *log.Logger
	loader *loader.Loader
}

// New creates a new emulator.
func New(logger *log.Logger) *Emulator {
	return &Emulator{
		logger: logger,
		loader: loader.New(),
	}
}

// Run loads the ROM and drives the machine until the context is cancelled,
// the frame limit is reached or a fatal machine error occurs.
func (e *Emulator) Run(ctx context.Context, opts options.Program) error {
	rom, err := e.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	machine := chip8.New(e.logger)
	machine.SetTrace(opts.Trace)
	if err := machine.Load(rom, chip8.ProgramStart); err != nil {
		return fmt.Errorf("loading program into memory: %w", err)
	}

	e.logger.Info("Running ROM",
		log.String("file", opts.Input),
		log.Int("size", len(rom)),
		log.Int("cycles_per_frame", opts.CyclesPerFrame))

	if opts.Headless {
		return e.runHeadless(ctx, machine, opts)
	}
	return gui.Run(ctx, e.logger, machine, opts)
}

// runHeadless paces the machine at the frame rate without any display.
// Key waits stay suspended since no input source exists.
func (e *Emulator) runHeadless(ctx context.Context, machine *chip8.Chip8,
	opts options.Program) error {

	machine.SetBeepHandler(func() {
		e.logger.Debug("Beep")
	})

	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			for range opts.CyclesPerFrame {
				if err := machine.Step(); err != nil {
					return fmt.Errorf("executing cycle: %w", err)
				}
			}

			frames++
			if opts.MaxFrames > 0 && frames >= opts.MaxFrames {
				e.logger.Info("Frame limit reached", log.Int("frames", frames))
				return nil
			}
		}
	}
}

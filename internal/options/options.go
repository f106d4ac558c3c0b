// Package options contains the program options.
package options

// Program options of the emulator.
type Program struct {
	Input string // ROM file to run

	CyclesPerFrame int // machine cycles executed per 60Hz frame
	Scale          int // window pixel size of one display pixel
	MaxFrames      int // stop after this many frames, 0 runs until cancelled

	Headless bool // run without a window
	Trace    bool // log every executed instruction
	Debug    bool
	Quiet    bool
}

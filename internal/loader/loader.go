// Package loader handles ROM file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/chip8emu/internal/chip8"
)

// maxROMSize is the size of the program space, ROM images are loaded at the
// program start address and have to fit below the end of memory.
const maxROMSize = chip8.MemorySize - chip8.ProgramStart

// ErrROMTooLarge is returned for ROM images that exceed the program space.
var ErrROMTooLarge = errors.New("ROM image exceeds program space")

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a ROM image from a file. A ROM is a flat byte sequence without
// header, magic bytes or checksum. Empty files and images that do not fit
// into the program space are rejected.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("file %s is empty", path)
	}
	if len(data) > maxROMSize {
		return nil, fmt.Errorf("file %s has %d bytes, program space is %d bytes: %w",
			path, len(data), maxROMSize, ErrROMTooLarge)
	}

	return data, nil
}

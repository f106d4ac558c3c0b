// Package main implements a tool that builds CHIP-8 ROM files from
// hex-encoded instruction words, useful for producing small test ROMs.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

func main() {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	output := flags.String("o", "out.rom", "name of the output ROM file")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		fmt.Printf("usage: chip8rom [options] <instruction words as hex>\n")
		fmt.Printf("example: chip8rom -o jump.rom 6005 A000 1200\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}

	data, err := assemble(args)
	if err != nil {
		fmt.Println(fmt.Errorf("building ROM failed: %w", err))
		os.Exit(1)
	}

	if err := os.WriteFile(*output, data, 0600); err != nil {
		fmt.Println(fmt.Errorf("writing file '%s': %w", *output, err))
		os.Exit(1)
	}
	fmt.Printf("wrote %d bytes to %s\n", len(data), *output)
}

// assemble converts hex-encoded instruction words into big-endian ROM bytes.
func assemble(words []string) ([]byte, error) {
	data := make([]byte, 0, len(words)*2)

	for _, word := range words {
		value, err := strconv.ParseUint(strings.TrimPrefix(word, "0x"), 16, 16)
		if err != nil {
			return nil, fmt.Errorf("parsing instruction word '%s': %w", word, err)
		}
		data = append(data, byte(value>>8), byte(value))
	}
	return data, nil
}

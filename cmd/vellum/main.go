// Command vellum is the CLI front end for the synchronizer core: encode a
// tree into a content-addressed archive plus index, decode one back, or
// drive both from a named profile.
package main

import (
	"fmt"
	"os"
)

var usage = `usage: vellum <command> [<args>]

Commands:
    encode      Encode a tree into an archive, store, and index
    decode      Decode an archive (or index + store) back into a tree
    profile     Run a named sync profile from a TOML config file

Use 'vellum <command> -h' for command-specific flags.
`

var handlers = map[string]func([]string) error{
	"encode":  encodeMain,
	"decode":  decodeMain,
	"profile": profileMain,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	handler, ok := handlers[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "vellum: unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}

	if err := handler(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "vellum: %v\n", err)
		os.Exit(1)
	}
}

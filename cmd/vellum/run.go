package main

import (
	"fmt"

	"code.vellumsync.dev/vellum/go/src/juliett/synchronizer"
)

// drive runs s to FINISHED, printing one progress line per NEXT_FILE code
// so a user watching the terminal sees which path is currently in flight.
func drive(s *synchronizer.Synchronizer) error {
	for {
		code, err := s.Step()
		if err != nil {
			return err
		}

		if code == synchronizer.CodeFinished {
			return nil
		}

		if code == synchronizer.CodeNextFile {
			path, err := s.CurrentPath()
			if err != nil {
				continue
			}

			fmt.Println(path)
		}
	}
}

package main

import (
	"flag"

	"code.vellumsync.dev/vellum/go/src/juliett/synchronizer"
	"code.vellumsync.dev/vellum/go/src/kilo/hooks"
)

func encodeMain(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)

	base := fs.String("base", "", "path to the directory or regular file to encode")
	archive := fs.String("archive", "", "path to write the encoded archive to")
	store := fs.String("store", "", "path to the writable content-addressed chunk store")
	index := fs.String("index", "", "path to write the chunk index to")
	hookPath := fs.String("hook", "", "path to a Lua script run once after FINISHED")

	var seeds stringList
	fs.Var(&seeds, "seed", "path to a read-only seed store (repeatable)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	basePath, err := resolveRequiredPath(*base, "Base path", "Directory or file to encode")
	if err != nil {
		return err
	}

	archivePath, err := resolveRequiredPath(*archive, "Archive path", "Output path for the encoded archive")
	if err != nil {
		return err
	}

	s := synchronizer.New(synchronizer.DirectionEncode)
	defer s.Close()

	if err := s.SetBasePath(basePath); err != nil {
		return err
	}

	if err := s.SetArchivePath(archivePath); err != nil {
		return err
	}

	if *store != "" {
		if err := s.SetWritableStore(*store); err != nil {
			return err
		}
	}

	for _, seed := range seeds {
		if err := s.AddSeedStore(seed); err != nil {
			return err
		}
	}

	if *index != "" {
		if err := s.SetIndexPath(*index); err != nil {
			return err
		}
	}

	if err := drive(s); err != nil {
		return err
	}

	digest, err := s.GetDigest()
	if err != nil {
		return err
	}

	chunkCount, bytesTotal := s.Stats()

	return hooks.RunIfConfigured(*hookPath, hooks.Report{
		Direction:  s.Direction().String(),
		ChunkCount: chunkCount,
		BytesTotal: bytesTotal,
		DigestHex:  digest.String(),
	})
}

package main

import (
	"flag"

	"code.vellumsync.dev/vellum/go/src/juliett/synchronizer"
	"code.vellumsync.dev/vellum/go/src/kilo/hooks"
)

var baseModesByName = map[string]synchronizer.BaseMode{
	"dir":  synchronizer.BaseModeDir,
	"file": synchronizer.BaseModeFile,
	"blk":  synchronizer.BaseModeBlk,
}

func decodeMain(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)

	base := fs.String("base", "", "path to materialize the decoded tree at")
	baseMode := fs.String("base-mode", "dir", "shape of the base when it must be created: dir, file, or blk")
	archive := fs.String("archive", "", "path to the archive to decode (omit if using -index and -store)")
	store := fs.String("store", "", "path to the writable content-addressed chunk store")
	index := fs.String("index", "", "path to the chunk index to decode from")
	hookPath := fs.String("hook", "", "path to a Lua script run once after FINISHED")

	var seeds stringList
	fs.Var(&seeds, "seed", "path to a read-only seed store (repeatable)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	mode, ok := baseModesByName[*baseMode]
	if !ok {
		return usageErrorf("unknown -base-mode %q: want dir, file, or blk", *baseMode)
	}

	basePath, err := resolveRequiredPath(*base, "Base path", "Where to materialize the decoded tree")
	if err != nil {
		return err
	}

	s := synchronizer.New(synchronizer.DirectionDecode)
	defer s.Close()

	if err := s.SetBasePath(basePath); err != nil {
		return err
	}

	if err := s.SetBaseMode(mode); err != nil {
		return err
	}

	if *archive != "" {
		if err := s.SetArchivePath(*archive); err != nil {
			return err
		}
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

	return hooks.RunIfConfigured(*hookPath, hooks.Report{
		Direction: s.Direction().String(),
		DigestHex: digest.String(),
	})
}

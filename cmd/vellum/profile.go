package main

import (
	"flag"

	"code.vellumsync.dev/vellum/go/src/echo/markl"
	"code.vellumsync.dev/vellum/go/src/golf/profile"
	"code.vellumsync.dev/vellum/go/src/juliett/synchronizer"
	"code.vellumsync.dev/vellum/go/src/kilo/hooks"

	"code.vellumsync.dev/vellum/go/cmd/vellum/monitor"
)

func profileMain(args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)

	configPath := fs.String("config", "", "path to the profile TOML file")
	name := fs.String("name", "", "name of the profile to run")
	monitorAddr := fs.String("monitor-addr", "", "if set, serve /status JSON on this address while running")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *configPath == "" || *name == "" {
		return usageErrorf("profile requires -config and -name")
	}

	file, err := profile.Load(*configPath)
	if err != nil {
		return err
	}

	p, err := file.Get(*name)
	if err != nil {
		return err
	}

	direction := synchronizer.DirectionEncode
	if p.Direction == "decode" {
		direction = synchronizer.DirectionDecode
	}

	s := synchronizer.New(direction)
	defer s.Close()

	if err := configureFromProfile(s, p); err != nil {
		return err
	}

	var stopMonitor func()

	if *monitorAddr != "" {
		stopMonitor = monitor.Serve(*monitorAddr, s)
		defer stopMonitor()
	}

	if err := drive(s); err != nil {
		return err
	}

	digest, err := s.GetDigest()
	if err != nil {
		return err
	}

	chunkCount, bytesTotal := s.Stats()

	extraArgs, err := p.ExtraArgsTokens()
	if err != nil {
		return err
	}

	return hooks.RunIfConfigured(p.HookPath, hooks.Report{
		Direction:  s.Direction().String(),
		ChunkCount: chunkCount,
		BytesTotal: bytesTotal,
		DigestHex:  digest.String(),
		ExtraArgs:  extraArgs,
	})
}

func configureFromProfile(s *synchronizer.Synchronizer, p profile.Profile) error {
	if p.BasePath != "" {
		if err := s.SetBasePath(p.BasePath); err != nil {
			return err
		}
	}

	if s.Direction() == synchronizer.DirectionDecode {
		mode, ok := baseModesByName[p.BaseMode]
		if !ok {
			mode = synchronizer.BaseModeDir
		}

		if err := s.SetBaseMode(mode); err != nil {
			return err
		}
	}

	if p.ArchivePath != "" {
		if err := s.SetArchivePath(p.ArchivePath); err != nil {
			return err
		}
	}

	if p.WritableStoreDir != "" {
		if err := s.SetWritableStore(p.WritableStoreDir); err != nil {
			return err
		}
	}

	for _, seed := range p.SeedStoreDirs {
		if err := s.AddSeedStore(seed); err != nil {
			return err
		}
	}

	if p.IndexPath != "" {
		if err := s.SetIndexPath(p.IndexPath); err != nil {
			return err
		}
	}

	if p.HashFormatId != "" {
		if err := s.SetHashFormat(markl.FormatId(p.HashFormatId)); err != nil {
			return err
		}
	}

	return nil
}

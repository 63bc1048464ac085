// Package hooks runs a user-supplied Lua script after a Step loop reaches
// FINISHED, the way dodder's sku_lua package drives ad hoc Lua callbacks
// against pooled VM state, but scaled down to one short-lived *lua.LState
// per run instead of a pool: a hook fires at most once per Synchronizer
// session, so there is nothing to reuse.
package hooks

import (
	lua "github.com/yuin/gopher-lua"

	"code.vellumsync.dev/vellum/go/src/alfa/errors"
)

// Report is everything a FINISHED hook is allowed to see: the one-shot
// session's direction, the totals accumulated along the way, and any
// shell-tokenized extra_args a profile wants forwarded to the script.
type Report struct {
	Direction  string
	ChunkCount int
	BytesTotal int64
	DigestHex  string
	ExtraArgs  []string
}

// Run loads path as a Lua chunk and executes it with report's fields bound
// as global variables, in the same request/response shape a shell hook
// would get via environment variables. ExtraArgs arrives as a 1-indexed
// Lua table, matching arg's usual shape for a standalone script.
func Run(path string, report Report) error {
	l := lua.NewState()
	defer l.Close()

	l.SetGlobal("direction", lua.LString(report.Direction))
	l.SetGlobal("chunk_count", lua.LNumber(report.ChunkCount))
	l.SetGlobal("bytes_total", lua.LNumber(report.BytesTotal))
	l.SetGlobal("digest_hex", lua.LString(report.DigestHex))

	extraArgs := l.NewTable()
	for _, arg := range report.ExtraArgs {
		extraArgs.Append(lua.LString(arg))
	}
	l.SetGlobal("extra_args", extraArgs)

	if err := l.DoFile(path); err != nil {
		return errors.Wrapf(err, "running hook %s", path)
	}

	return nil
}

// RunIfConfigured calls Run only when path is non-empty, so callers can
// pass an optional profile field straight through without an if at every
// call site.
func RunIfConfigured(path string, report Report) error {
	if path == "" {
		return nil
	}

	return Run(path, report)
}

package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyJob        = "job"
	KeyKind       = "kind"
	KeyHost       = "host"
	KeyBuild      = "build"
	KeyPython     = "python"
	KeyTargets    = "targets"
	KeyWorker     = "worker"
	KeyWorkers    = "workers"
	KeyJobs       = "jobs"
	KeyProperty   = "property"
	KeyPath       = "path"
	KeyCommand    = "command"
	KeyExitCode   = "exit_code"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Job(name string) slog.Attr       { return slog.String(KeyJob, name) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Host(triple string) slog.Attr    { return slog.String(KeyHost, triple) }
func Build(triple string) slog.Attr   { return slog.String(KeyBuild, triple) }
func Python(v string) slog.Attr       { return slog.String(KeyPython, v) }
func Targets(t []string) slog.Attr    { return slog.Any(KeyTargets, t) }
func Worker(id string) slog.Attr      { return slog.String(KeyWorker, id) }
func Workers(n int) slog.Attr         { return slog.Int(KeyWorkers, n) }
func Jobs(n int) slog.Attr            { return slog.Int(KeyJobs, n) }
func Property(p string) slog.Attr     { return slog.String(KeyProperty, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func ExitCode(code int) slog.Attr     { return slog.Int(KeyExitCode, code) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

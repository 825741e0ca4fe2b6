/*
Package workers determines worker pool sizes for scan and export pipelines.

When running in containers the number of available CPUs may be limited by
cgroup constraints. Go 1.19+ sets GOMAXPROCS from the container CPU limit,
while runtime.NumCPU() still reports the host machine. All sizing in this
package therefore starts from runtime.GOMAXPROCS(0).

Scan workers walk archives and directories and hold open file handles, so
the pool reserves two CPUs for the collector and HTTP layer and is capped
low. Export workers are dominated by file I/O and ffmpeg subprocesses and
tolerate a higher cap. Both pools never exceed the number of work units.

Operators can override the computed sizes with the SCAN_WORKERS and
EXPORT_WORKERS environment variables.
*/
package workers

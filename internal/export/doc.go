// Package export materializes selected assets onto disk: saving to a
// user-chosen directory, staging copies in a temporary folder, and
// converting audio through ffmpeg on the way out.
//
// Exports run on a worker pool with per-job failure collection, so one
// unreadable archive entry fails that job without aborting the batch.
package export

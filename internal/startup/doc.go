// Package startup handles service initialization: loading configuration
// from environment variables, validating directories, and producing the
// structured startup log that makes container deployments debuggable from
// the first lines of output.
//
// Configuration is environment-only. Every variable has a default that
// works for a local run; the startup log prints the effective value of
// each one.
package startup

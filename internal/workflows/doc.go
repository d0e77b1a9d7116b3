// Package workflows implements the high-level operations behind cleanroom
// CLI commands.
//
// Each operation follows the same shape: an Options struct in, a Result
// struct out, context first, sentinel errors from internal/errors wrapped
// with call-site context. Operations load the client configuration, talk
// to the orchestrator, advance the local workflow mirror, and journal what
// happened. The cmd layer stays thin and only renders results.
//
// The orchestrator owns the authoritative workflow records. The local
// mirror under the user data directory tracks what this party has observed
// and is reconciled against the orchestrator's status wherever an
// operation learns it.
package workflows

// Package poller watches a running workflow's execution log until it
// signals completion.
//
// The executor exposes completion only through its log stream, so the
// poller scans each fetched log for configured marker substrings. Polling
// is bounded in both time and consecutive failures, jittered to avoid
// synchronized fetches from multiple collaborators, and cancellable via
// context so a torn-down caller never receives stale updates.
package poller

// Package journal keeps an append-only local record of submission
// pipeline actions.
//
// Entries are written as JSON lines to the user data directory. The
// journal is best-effort: it exists so a party can reconstruct what they
// submitted, approved, or ran, and a write failure never fails the
// operation being recorded.
package journal

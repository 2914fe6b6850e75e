// Package reader maintains the viewer's copy of the published snapshot as
// an explicit refresh state machine:
//
//	loading -> ready          first fetch succeeded
//	loading -> stale          first fetch failed; embedded fallback shown
//	ready   -> refreshing -> ready|stale
//
// There is no terminal state; the reader re-polls on a fixed interval for
// the lifetime of its host. Fetches use cache-defeating headers and a
// nonce query parameter so no intermediary serves a copy older than one
// refresh interval. Each refresh carries a generation token: only the
// newest in-flight fetch may apply its result, so a slow superseded
// response is discarded rather than merged.
//
// Consumer-side failures are never fatal — a bad fetch or an
// incompatible document degrades to the stale state with the
// last-known-good snapshot still displayed.
package reader

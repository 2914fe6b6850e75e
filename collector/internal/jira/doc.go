// Package jira fetches Bug-type issues from the Jira Cloud search API.
//
// The client posts to /rest/api/3/search/jql and follows the opaque
// nextPageToken cursor until the upstream stops returning one, bounded by
// MaxPages as a guard against cursor loops. Issues are streamed to a visit
// callback one at a time; nothing is buffered across pages.
//
// Failures map onto three sentinel errors: ErrAuth (credential rejected,
// needs external remediation), ErrUnavailable (transient — retry on the
// next scheduled run), and ErrProtocol (unrecognized response shape —
// fatal for the run, never silently dropped). Test with errors.Is.
package jira

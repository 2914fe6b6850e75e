package jira

import "errors"

// Sentinel errors classifying why a run's fetch failed. All page and
// transport errors returned by the client wrap exactly one of these.
var (
	// ErrAuth means the upstream rejected the credential pair (401/403).
	// The run is fatal and needs external remediation (token rotation).
	ErrAuth = errors.New("jira: authentication rejected")

	// ErrUnavailable covers transient conditions: network failures,
	// timeouts, 429 and 5xx responses. The run fails; the next scheduled
	// trigger retries. Nothing is retried within the same run.
	ErrUnavailable = errors.New("jira: upstream unavailable")

	// ErrProtocol means the response shape was unrecognized — a non-JSON
	// body, a page without an issues field, or a cursor that never
	// terminates. Fatal for the run and never retried automatically.
	ErrProtocol = errors.New("jira: unexpected response shape")
)

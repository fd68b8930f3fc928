// Package httputil provides the HTTP plumbing shared by the REST snapshot
// source and the event webhook.
//
//   - [Client]: GET-and-decode with default headers, status mapping and
//     instrumentation hooks
//   - [Retry]: automatic retry with exponential backoff for failures wrapped
//     in [RetryableError]
//
// Status mapping follows one rule set: 200 succeeds, 404 is
// errors.ErrCodeNotFound, 5xx and transport failures are retryable
// errors.ErrCodeNetwork, and other statuses fail without retry.
package httputil

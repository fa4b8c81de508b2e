// Package httputil downloads the World Bank source files.
//
// [Fetch] performs a single GET and reads the whole body, retrying
// transient failures (network errors, 429 and 5xx responses) with
// exponential backoff through [Retry]. A 404 maps to a NOT_FOUND error and
// other non-2xx statuses to NETWORK_ERROR, both from pkg/errors:
//
//	data, err := httputil.Fetch(ctx, http.DefaultClient, url)
//
// Responses are not cached here; the pipeline stores downloaded files in
// pkg/cache.
package httputil

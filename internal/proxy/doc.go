// Package proxy serves the HTML fetch endpoint that ProxySource consumes.
//
//	GET /api/proxy?url=<urlencoded>
//
// A successful fetch answers 200 with {html, status, statusText, url}. Any
// failure answers with an {error} body: 400 for a missing or non-http(s) URL,
// the upstream status for a non-2xx upstream response, 504 when the upstream
// does not answer in time and 502 for other transport failures.
//
// Running the endpoint locally lets a browser-based front end, or several
// audit processes, share one egress point.
package proxy

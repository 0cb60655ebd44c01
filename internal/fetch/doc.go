// Package fetch turns a URL into a parsed document.
//
// A Fetcher delegates the network work to a Source:
//   - ProxySource calls an HTML fetch-proxy endpoint (GET ?url=...) that
//     returns the page as JSON. This is what browser-hosted auditors use.
//   - DirectSource performs a plain HTTP GET, optionally through SOCKS5.
//   - RenderSource loads the page in headless Chrome and captures the DOM
//     after scripts have run.
//
// Every fetch is bounded by a fixed maximum timeout on top of whatever
// deadline the caller supplies. Failures are reported uniformly: ErrTimeout
// for deadlines, *FetchError for HTTP and transport failures, and the
// context's own error when the caller cancelled. Markup is parsed leniently
// with golang.org/x/net/html; a page that cannot be parsed becomes an empty
// document rather than an error.
package fetch

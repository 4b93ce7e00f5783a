// Package transport provides the HTTP clients used to crawl company
// websites and check links.
//
// A Client connects directly by default. It can instead route every
// connection through a SOCKS5 proxy (golang.org/x/net/proxy), or through an
// embedded Tor daemon managed by tornago. Each client can also carry a
// user agent, a session cookie and extra headers, which it adds to every
// request, including redirects.
package transport

// Package tor routes page fetches through the Tor network.
//
// A Client wraps a SOCKS5 dialer (golang.org/x/net/proxy) for an existing
// Tor daemon and hands out http.Client values that the fetcher can use
// unchanged. EmbeddedTor starts a private Tor daemon through tornago when
// no daemon is available.
//
// Requests to .onion hosts are checked before dialing: a v3 address must
// carry a valid checksum, and v2 addresses are refused.
package tor

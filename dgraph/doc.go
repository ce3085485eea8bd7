// Package dgraph provides a lazily constructed, shared client for a Dgraph
// cluster. A Provider picks one alpha at random from a configured pool, builds
// a client bound to it on first use, and hands the same client back on every
// later call until a caller forces reinitialization.
//
// Clients are built with insecure transport credentials. Building a client
// performs no network round trip; connectivity problems surface on first use.
package dgraph

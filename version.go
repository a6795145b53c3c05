package relay

// Version is reported by the CLI and in the worker protocol handshake. It is
// set at build time with -ldflags "-X github.com/fwojciec/relay.Version=...".
var Version = "dev"

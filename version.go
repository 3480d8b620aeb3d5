package authflow

// Version is the release of the library and CLI, overridden at build time with
// -ldflags "-X github.com/aretw0/authflow.Version=...".
var Version = "0.1.0-dev"

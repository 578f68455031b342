package version

// Version is the application version, overridden at build time with
// -ldflags "-X fbwsim/pkg/version.Version=...".
var Version = "v0.1.0"

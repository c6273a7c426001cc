package types

// AppName is the application name used in logs and notifications
const AppName = "octomirror"

// Version is the application version, overwritten at build time via ldflags
var Version = "v0.0.0"

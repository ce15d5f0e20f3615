package config

// Version is the server version reported by initialize and the health tool.
// Overridable at build time with -ldflags "-X .../pkg/config.Version=...".
var Version = "1.0.0"

package botflow

// Version is the release version, set at build time with -ldflags "-X github.com/aretw0/botflow.Version=...".
var Version = "dev"

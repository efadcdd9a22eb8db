package main

// AppConfig is the opaque config type threaded through every Context in
// this CLI's pipeline runs. The core never inspects it; it exists purely
// so demo steps can read ambient settings like a working directory.
type AppConfig struct {
	WorkDir string
}

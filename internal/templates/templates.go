// Package templates exposes the embedded resources used to initialize a deployment workspace.
package templates

import "embed"

//go:embed deploy.env deploy.toml
var templateFS embed.FS

// Read returns the embedded template content at path.
func Read(path string) ([]byte, error) {
	return templateFS.ReadFile(path)
}

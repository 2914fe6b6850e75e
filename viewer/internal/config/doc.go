// Package config loads the viewer's section of config.yaml. The
// `collector:` key in the same file is ignored, so both binaries can share
// one file.
package config

// Package buildinfo holds build-time metadata injected through -ldflags.
package buildinfo

import "fmt"

// UnknownValue is reported for metadata that was not injected at build time.
const UnknownValue = "unknown"

// Context contains build-time metadata that is not user-configurable.
type Context struct {
	version   string
	buildDate string
}

// NewContext returns build metadata. Empty values read back as UnknownValue.
func NewContext(version, buildDate string) *Context {
	return &Context{version: version, buildDate: buildDate}
}

// Version returns the release version.
func (c *Context) Version() string {
	if c == nil || c.version == "" {
		return UnknownValue
	}
	return c.version
}

// BuildDate returns the build timestamp.
func (c *Context) BuildDate() string {
	if c == nil || c.buildDate == "" {
		return UnknownValue
	}
	return c.buildDate
}

// String formats the metadata for --version output.
func (c *Context) String() string {
	return fmt.Sprintf("%s (built %s)", c.Version(), c.BuildDate())
}

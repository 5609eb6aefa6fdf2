// Package buildinfo contains build-time metadata separate from user configuration.
package buildinfo

// Injected by the linker:
//
//	go build -ldflags "-X github.com/tphakala/fox-report/internal/buildinfo.Version=v1.2.3"
var (
	// Version holds the Git version tag from build
	Version string

	// BuildDate is the time when the binary was built
	BuildDate string
)

// BuildInfo provides an interface for accessing build-time metadata.
// This interface makes testing easier and allows for different implementations.
type BuildInfo interface {
	// GetVersion returns the build version string
	GetVersion() string
	// GetBuildDate returns the build date string
	GetBuildDate() string
}

// Context contains build-time metadata that is not user-configurable.
// This data is injected at build time and should not be part of the
// configuration system.
type Context struct {
	Version   string
	BuildDate string
}

// Current returns the metadata the linker injected into this binary.
func Current() *Context {
	return &Context{
		Version:   Version,
		BuildDate: BuildDate,
	}
}

// GetVersion implements BuildInfo.GetVersion
func (c *Context) GetVersion() string {
	if c == nil || c.Version == "" {
		return "unknown"
	}
	return c.Version
}

// GetBuildDate implements BuildInfo.GetBuildDate
func (c *Context) GetBuildDate() string {
	if c == nil || c.BuildDate == "" {
		return "unknown"
	}
	return c.BuildDate
}

// String renders the metadata for a --version banner.
func (c *Context) String() string {
	if c.GetBuildDate() == "unknown" {
		return c.GetVersion()
	}
	return c.GetVersion() + " (built " + c.GetBuildDate() + ")"
}

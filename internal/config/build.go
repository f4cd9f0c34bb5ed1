package config

// Set at link time:
//
//	go build -ldflags "-X beachscore/internal/config.version=1.4.0 \
//	    -X beachscore/internal/config.commit=$(git rev-parse --short HEAD) \
//	    -X beachscore/internal/config.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// NewBuildInfo reports the linker-injected metadata.
func NewBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
}

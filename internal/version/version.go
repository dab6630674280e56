package version

// Version contains the application version information.
// Set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/guidebuilder/internal/version.Version=v1.0.0".
var Version = "dev"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return "guidebuilder " + Version + " (" + GitCommit + ", built " + BuildTime + ")"
}

package autolocale

// Version information for autolocale.
// Version and the build info can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/autolocale.Version=1.0.0"
const (
	// Name is the application name.
	Name = "autolocale"

	// Description is a short description of the application.
	Description = "Runtime UI localization with a shared translation cache"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/autolocale"
)

var (
	// Version is the semantic version of the application.
	Version = "0.1.0"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// FullVersion returns the version string with the short commit appended
// when one was stamped in.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns the User-Agent sent to the translation service.
func UserAgent() string {
	return Name + "/" + Version
}

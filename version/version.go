package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info represents version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns version information, filling gaps from the binary's embedded
// build info when ldflags were not set.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = buildInfo.GoVersion
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "" && len(setting.Value) >= 7 {
					info.GitCommit = setting.Value[:7]
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = setting.Value
				}
			}
		}
	}

	return info
}

// String returns a short human-readable version string.
func (i Info) String() string {
	s := i.Version
	if i.GitCommit != "" {
		s = fmt.Sprintf("%s-%s", s, i.GitCommit)
	}
	if i.BuildTime != "" {
		s = fmt.Sprintf("%s (built %s)", s, i.BuildTime)
	}
	return s
}

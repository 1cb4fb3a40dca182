// Copyright 2021 FerretDB Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package version provides information about docvalue version and build configuration.
//
// # Extra files
//
// The following text files may be present in this (`build/version`) directory during building:
//   - version.txt (required) contains the version in a format
//     similar to `git describe` output: `v<major>.<minor>.<patch>`.
//   - commit.txt (optional) contains information about the source git commit.
//
// Values from files take precedence over values from the Go build information.
package version

import (
	"embed"
	"regexp"
	"runtime"
	runtimedebug "runtime/debug"
	"strconv"
	"strings"

	"github.com/FerretDB/docvalue/internal/util/must"
)

//go:embed *.txt
var gen embed.FS

// Info provides details about the current build.
type Info struct {
	Version          string
	Commit           string
	Dirty            bool
	BuildEnvironment map[string]string
}

// info singleton instance set by init().
var info *Info

// unknown is a placeholder for unknown version and commit values.
const unknown = "unknown"

// module path from go.mod.
const module = "github.com/FerretDB/docvalue"

// semVerTag is a https://semver.org/#is-there-a-suggested-regular-expression-regex-to-check-a-semver-string,
// but with a leading `v`.
//
//nolint:lll // for readability
var semVerTag = regexp.MustCompile(`^v(?P<major>0|[1-9]\d*)\.(?P<minor>0|[1-9]\d*)\.(?P<patch>0|[1-9]\d*)(?:-(?P<prerelease>(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+(?P<buildmetadata>[0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

// Get returns current build's info.
//
// It returns a shared instance without any synchronization.
func Get() *Info {
	return info
}

// readBuildInfo fills info from the Go build information.
//
// VCS settings are used only when the main module is this one;
// otherwise they refer to the repository that uses it.
func readBuildInfo() {
	buildInfo, ok := runtimedebug.ReadBuildInfo()
	if !ok {
		return
	}

	info.BuildEnvironment["go.version"] = buildInfo.GoVersion

	if buildInfo.Main.Path != module {
		for _, dep := range buildInfo.Deps {
			if dep.Path == module && dep.Version != "(devel)" {
				info.Version = dep.Version
			}
		}

		return
	}

	if v := buildInfo.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}

	for _, s := range buildInfo.Settings {
		if v := s.Value; v != "" {
			info.BuildEnvironment[s.Key] = v
		}

		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.modified":
			info.Dirty = must.NotFail(strconv.ParseBool(s.Value))
		}
	}
}

// readFiles overrides info fields with values from embedded files.
func readFiles() {
	v := strings.TrimSpace(string(must.NotFail(gen.ReadFile("version.txt"))))
	if !semVerTag.MatchString(v) {
		panic("invalid version.txt: " + v)
	}

	info.Version = v

	if b, _ := gen.ReadFile("commit.txt"); len(b) > 0 {
		info.Commit = strings.TrimSpace(string(b))
	}
}

func init() {
	info = &Info{
		Version: unknown,
		Commit:  unknown,
		BuildEnvironment: map[string]string{
			"go.runtime": runtime.Version(),
		},
	}

	readBuildInfo()
	readFiles()
}

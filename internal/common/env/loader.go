// internal/common/env/loader.go
package env

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	apperrors "human1-sdk/internal/common/errors"
	"human1-sdk/internal/common/logger"
)

const DefaultFileName = ".env"

// Options controls where Load looks for an env file and what it checks afterwards.
type Options struct {
	CustomPath      string
	AdditionalPaths []string
	Profile         string
	Required        []string
	CustomVars      map[string]string
	Silent          bool
	Logger          logger.Logger
}

// Result reports the outcome of Load. Err is set only when Success is false.
type Result struct {
	LoadedPath string
	Success    bool
	Vars       map[string]string
	Err        error
}

// Overridable in tests.
var (
	executableDir = func() string {
		exe, err := os.Executable()
		if err != nil {
			return ""
		}
		return filepath.Dir(exe)
	}
	workingDir = os.Getwd
)

// Load finds the first existing env file, loads it into the process
// environment without overriding variables that are already set, applies
// CustomVars, and validates Required. Missing files are not an error.
func Load(opts Options) Result {
	log := opts.Logger
	if log == nil || opts.Silent {
		log = logger.NewNoOpLogger()
	}

	result := Result{Success: true}

	if path, ok := FindFile(opts); ok {
		if err := godotenv.Load(path); err != nil {
			log.Warn("failed to parse env file", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		} else {
			result.LoadedPath = path
			log.Info("loaded env file", map[string]interface{}{"path": path})
		}
	} else {
		log.Debug("no env file found, using process environment", nil)
	}

	for k, v := range opts.CustomVars {
		_ = os.Setenv(k, v)
	}

	if err := ValidateRequired(opts.Required); err != nil {
		log.Error("environment validation failed", apperrors.LogFields(err))
		result.Success = false
		result.Err = err
	}

	result.Vars = snapshot()
	return result
}

// FindFile returns the first existing candidate path in search order.
func FindFile(opts Options) (string, bool) {
	for _, candidate := range candidates(opts) {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// candidates lists every path in the order Load probes them. The profile
// variant of each path comes right before the path itself.
func candidates(opts Options) []string {
	var base []string
	if opts.CustomPath != "" {
		base = append(base, opts.CustomPath)
	}
	if dir := executableDir(); dir != "" {
		base = append(base, filepath.Join(dir, DefaultFileName))
	}
	base = append(base, opts.AdditionalPaths...)
	if wd, err := workingDir(); err == nil {
		base = append(base, filepath.Join(wd, DefaultFileName))
	}

	out := make([]string, 0, len(base)*2)
	seen := make(map[string]bool, len(base)*2)
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}
	for _, p := range base {
		if opts.Profile != "" {
			add(ProfilePath(p, opts.Profile))
		}
		add(p)
	}
	return out
}

// ProfilePath returns the profile variant of path: ".env" becomes
// ".env.<profile>", any other name gets ".<profile>" appended.
func ProfilePath(path, profile string) string {
	if profile == "" {
		return path
	}
	if strings.HasSuffix(path, DefaultFileName) {
		return strings.TrimSuffix(path, DefaultFileName) + DefaultFileName + "." + profile
	}
	return path + "." + profile
}

// ValidateRequired fails with an environment error naming every variable
// in names that is unset or blank.
func ValidateRequired(names []string) error {
	var missing []string
	for _, name := range names {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewEnvironmentError(missing)
	}
	return nil
}

// FirstNonEmpty returns the value of the first set variable among names.
func FirstNonEmpty(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

func snapshot() map[string]string {
	environ := os.Environ()
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if i := strings.IndexByte(kv, '='); i > 0 {
			vars[kv[:i]] = kv[i+1:]
		}
	}
	return vars
}

// Keys returns the sorted variable names of a Result, for display.
func (r Result) Keys() []string {
	keys := make([]string, 0, len(r.Vars))
	for k := range r.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

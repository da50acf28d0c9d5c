package resolve

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// maxExtendsDepth bounds how many "extends" hops LoadPathAliases follows,
// preventing a cyclic extends chain from looping forever (spec.md §4.5:
// "extends is followed with a depth limit").
const maxExtendsDepth = 8

// tsconfigFile is the on-disk shape of the subset of tsconfig.json/
// jsconfig.json this package cares about.
type tsconfigFile struct {
	Extends         string `json:"extends"`
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// PathAliases is a resolved baseUrl + paths mapping, anchored to the
// directory the config file that declared it lives in.
type PathAliases struct {
	baseDir string
	paths   map[string][]string
}

// LoadPathAliases reads the nearest tsconfig.json (preferred) or
// jsconfig.json in dir, following "extends" up to maxExtendsDepth hops and
// merging baseUrl/paths with the child's values taking precedence (spec.md
// §4.5). Returns nil, nil if neither file exists.
func LoadPathAliases(dir string) (*PathAliases, error) {
	path, err := findConfigFile(dir)
	if err != nil || path == "" {
		return nil, err
	}
	return loadChain(path, maxExtendsDepth)
}

func findConfigFile(dir string) (string, error) {
	ts := filepath.Join(dir, "tsconfig.json")
	if fileExists(ts) {
		return ts, nil
	}
	js := filepath.Join(dir, "jsconfig.json")
	if fileExists(js) {
		return js, nil
	}
	return "", nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func loadChain(path string, depthRemaining int) (*PathAliases, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg tsconfigFile
	if err := json.Unmarshal(body, &cfg); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	baseURL := configDir
	if cfg.CompilerOptions.BaseURL != "" {
		baseURL = filepath.Join(configDir, cfg.CompilerOptions.BaseURL)
	}
	result := &PathAliases{baseDir: baseURL, paths: cfg.CompilerOptions.Paths}

	if cfg.Extends != "" && depthRemaining > 0 {
		parentPath := cfg.Extends
		if !filepath.IsAbs(parentPath) {
			parentPath = filepath.Join(configDir, parentPath)
		}
		if !strings.HasSuffix(parentPath, ".json") {
			parentPath += ".json"
		}
		if fileExists(parentPath) {
			parent, err := loadChain(parentPath, depthRemaining-1)
			if err == nil && parent != nil {
				result = mergeAliases(parent, result)
			}
		}
	}

	return result, nil
}

// mergeAliases layers child over parent: child's baseDir and any path
// pattern it redefines win; parent entries the child doesn't touch survive.
func mergeAliases(parent, child *PathAliases) *PathAliases {
	merged := map[string][]string{}
	for k, v := range parent.paths {
		merged[k] = v
	}
	for k, v := range child.paths {
		merged[k] = v
	}
	baseDir := child.baseDir
	if baseDir == "" {
		baseDir = parent.baseDir
	}
	return &PathAliases{baseDir: baseDir, paths: merged}
}

// Expand returns every candidate absolute path specifier could map to,
// trying patterns in the order they're declared and, for wildcard
// patterns, trying each target template in declaration order (spec.md
// §4.5: "the first resolving to an existing file wins" is the caller's
// job — Expand just enumerates candidates in priority order).
func (a *PathAliases) Expand(specifier string) []string {
	if a == nil {
		return nil
	}

	if templates, ok := a.paths[specifier]; ok {
		return a.expandTemplates(templates, "")
	}

	var best []string
	bestPrefixLen := -1
	for pattern, templates := range a.paths {
		prefix, ok := wildcardPrefix(pattern)
		if !ok || !strings.HasPrefix(specifier, prefix) {
			continue
		}
		if len(prefix) <= bestPrefixLen {
			continue
		}
		remainder := specifier[len(prefix):]
		bestPrefixLen = len(prefix)
		best = a.expandTemplates(templates, remainder)
	}
	return best
}

func (a *PathAliases) expandTemplates(templates []string, wildcard string) []string {
	out := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		expanded := strings.Replace(tmpl, "*", wildcard, 1)
		out = append(out, filepath.Join(a.baseDir, expanded))
	}
	return out
}

// wildcardPrefix returns the literal prefix of a "@api/*"-style pattern and
// true, or "", false if pattern has no single trailing wildcard.
func wildcardPrefix(pattern string) (string, bool) {
	idx := strings.Index(pattern, "*")
	if idx == -1 || idx != len(pattern)-1 {
		return "", false
	}
	return pattern[:idx], true
}

package devserver

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
)

const (
	AppClient   = "client"
	AppArtboard = "artboard"
)

type ProxyRule struct {
	Prefix       string
	Target       string
	ChangeOrigin bool
}

type Polyfills struct {
	Include []string
	Exclude []string
	Globals []string
}

// AppConfig mirrors the bundler settings of one front-end app.
type AppConfig struct {
	Name         string
	Base         string
	Host         bool
	Port         int
	CacheDir     string
	Sourcemap    bool
	EmptyOutDir  bool
	Aliases      map[string]string
	Define       map[string]string
	Proxy        []ProxyRule
	Polyfills    Polyfills
	OptimizeDeps []string
}

func nodePolyfills() Polyfills {
	return Polyfills{
		Include: []string{"path", "url"},
		Exclude: []string{"fs"},
		Globals: []string{"Buffer", "global", "process"},
	}
}

func browserDefines() map[string]string {
	return map[string]string{
		"global":      "globalThis",
		"process.env": "{}",
	}
}

// ClientApp returns the settings of the main client app rooted at workspaceRoot.
func ClientApp(workspaceRoot, version string) AppConfig {
	define := browserDefines()
	quoted, _ := json.Marshal(version)
	define["appVersion"] = string(quoted)

	return AppConfig{
		Name:        AppClient,
		Base:        "/",
		Host:        true,
		Port:        5173,
		CacheDir:    "../../node_modules/.vite/client",
		Sourcemap:   true,
		EmptyOutDir: true,
		Aliases: map[string]string{
			"@/client/": workspaceRoot + "/apps/client/src/",
		},
		Define: define,
		Proxy: []ProxyRule{
			{Prefix: "/artboard", Target: "http://localhost:6173", ChangeOrigin: true},
		},
		Polyfills:    nodePolyfills(),
		OptimizeDeps: []string{"sanitize-html"},
	}
}

// ArtboardApp returns the settings of the artboard app, served under /artboard/.
func ArtboardApp(workspaceRoot string) AppConfig {
	return AppConfig{
		Name:        AppArtboard,
		Base:        "/artboard/",
		Host:        true,
		Port:        6173,
		CacheDir:    "../../node_modules/.vite/artboard",
		Sourcemap:   true,
		EmptyOutDir: true,
		Aliases: map[string]string{
			"@/artboard/": workspaceRoot + "/apps/artboard/src/",
		},
		Define:       browserDefines(),
		Polyfills:    nodePolyfills(),
		OptimizeDeps: []string{"sanitize-html", "react", "react-dom"},
	}
}

func Apps(workspaceRoot, version string) map[string]AppConfig {
	return map[string]AppConfig{
		AppClient:   ClientApp(workspaceRoot, version),
		AppArtboard: ArtboardApp(workspaceRoot),
	}
}

// Lookup returns the named app, or an error listing the known names.
func Lookup(apps map[string]AppConfig, name string) (AppConfig, error) {
	app, ok := apps[name]
	if !ok {
		names := make([]string, 0, len(apps))
		for n := range apps {
			names = append(names, n)
		}
		sort.Strings(names)
		return AppConfig{}, fmt.Errorf("unknown app %q (want one of %s)", name, strings.Join(names, ", "))
	}
	return app, nil
}

// ResolveAlias rewrites importPath through the longest matching alias.
// The second return value is false when no alias applies.
func (a AppConfig) ResolveAlias(importPath string) (string, bool) {
	var best string
	for prefix := range a.Aliases {
		if strings.HasPrefix(importPath, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return importPath, false
	}
	return a.Aliases[best] + strings.TrimPrefix(importPath, best), true
}

func (a AppConfig) Addr() string {
	host := "localhost"
	if a.Host {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, a.Port)
}

func (a AppConfig) basePath() string {
	base := path.Clean("/" + a.Base)
	if base != "/" {
		base += "/"
	}
	return base
}

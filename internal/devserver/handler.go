package devserver

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// NewHandler serves the built assets of app from staticDir and forwards the
// app's proxy prefixes to their targets. Unknown paths under the base fall
// back to index.html.
func NewHandler(app AppConfig, staticDir string) (http.Handler, error) {
	info, err := os.Stat(staticDir)
	if err != nil {
		return nil, fmt.Errorf("static dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static dir %s is not a directory", staticDir)
	}

	router := mux.NewRouter()

	for _, rule := range app.Proxy {
		proxy, err := newProxy(rule)
		if err != nil {
			return nil, err
		}
		router.PathPrefix(rule.Prefix).Handler(proxy)
	}

	base := app.basePath()
	if base != "/" {
		router.Handle(strings.TrimSuffix(base, "/"), http.RedirectHandler(base, http.StatusMovedPermanently))
	}
	router.PathPrefix(base).Handler(http.StripPrefix(strings.TrimSuffix(base, "/"), spaHandler{root: staticDir}))

	return router, nil
}

func newProxy(rule ProxyRule) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(rule.Target)
	if err != nil {
		return nil, fmt.Errorf("proxy target for %s: %w", rule.Prefix, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("proxy target for %s must be an absolute URL, got %q", rule.Prefix, rule.Target)
	}

	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
			if !rule.ChangeOrigin {
				r.Out.Host = r.In.Host
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error().Err(err).Str("prefix", rule.Prefix).Str("target", rule.Target).Msg("proxy request failed")
			w.WriteHeader(http.StatusBadGateway)
		},
	}, nil
}

type spaHandler struct {
	root string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)
	full := filepath.Join(h.root, filepath.FromSlash(name))

	if info, err := os.Stat(full); err == nil && !info.IsDir() {
		http.ServeFile(w, r, full)
		return
	}

	index := filepath.Join(h.root, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, index)
}

package panel

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
)

//go:embed web
var content embed.FS

// Site names one of the two embedded page sets.
type Site string

const (
	// ConfigSite is served by the configuration server.
	ConfigSite Site = "config"

	// VideoSite is served by the data server.
	VideoSite Site = "video"
)

// Handler returns an http.Handler serving the pages of site.
//
// When dir is non-empty and exists, pages are read from dir/<site> on
// each request so they can be edited without a rebuild. Otherwise the
// embedded copy is used. The caller's router decides which paths reach
// the handler; a missing file answers 404.
//
// Panics if the embedded site is missing (build error).
func Handler(site Site, dir string) http.Handler {
	var fileSystem http.FileSystem

	if dir != "" {
		siteDir := path.Join(dir, string(site))
		if info, err := os.Stat(siteDir); err == nil && info.IsDir() {
			fileSystem = http.Dir(siteDir)
		}
	}

	if fileSystem == nil {
		siteFS, err := fs.Sub(content, "web/"+string(site))
		if err != nil {
			panic(fmt.Sprintf("panel: embedded site %q not found: %v", site, err))
		}
		fileSystem = http.FS(siteFS)
	}

	fileServer := http.FileServer(fileSystem)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")
		fileServer.ServeHTTP(w, r)
	})
}

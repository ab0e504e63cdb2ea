package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/specialistvlad/assetpipe/internal/namespace"
)

// AssetStatus is one element of the /assets listing.
type AssetStatus struct {
	Path   string `json:"path"`
	Loader string `json:"loader"`
	Type   string `json:"type"`
}

// healthHandler answers liveness checks.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// assetsHandler lists the loaded namespace as JSON. The optional "prefix"
// query parameter restricts the listing to one subtree.
func (a *App) assetsHandler(w http.ResponseWriter, r *http.Request) {
	prefix := strings.Trim(r.URL.Query().Get("prefix"), "/")
	a.logger.Debug("Assets endpoint hit.", "remote_addr", r.RemoteAddr, "prefix", prefix)

	list := a.AssetStatuses(prefix)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(list); err != nil {
		a.logger.Error("Failed to encode asset listing", "error", err)
	}
}

// AssetStatuses lists loaded assets whose path starts with prefix, in
// namespace order.
func (a *App) AssetStatuses(prefix string) []AssetStatus {
	list := []AssetStatus{}
	a.engine.Walk(func(e namespace.Entry) bool {
		if prefix != "" && e.Path != prefix && !strings.HasPrefix(e.Path, prefix+"/") {
			return true
		}
		list = append(list, AssetStatus{Path: e.Path, Loader: e.Loader, Type: fmt.Sprintf("%T", e.Instance)})
		return true
	})
	return list
}

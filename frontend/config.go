// Package frontend resolves the build-time configuration of the web frontend.
package frontend

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"helloworld/config"
)

// Config is the frontend runtime configuration.
type Config struct {
	// APIBaseURL is where the frontend sends RPC calls. Empty means same origin.
	APIBaseURL string `json:"apiBaseUrl" yaml:"apiBaseUrl"`
}

// Load resolves the configuration from build-time variables: VITE_API_BASE_URL
// verbatim, else a Render URL built from VITE_BACKEND_HOST, else empty.
func Load(lookup config.Lookup) Config {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	return Config{
		APIBaseURL: config.ResolveURL(get("VITE_API_BASE_URL"), get("VITE_BACKEND_HOST")),
	}
}

// Formats lists the output formats accepted by Write.
var Formats = []string{"json", "yaml", "env", "js"}

// Write renders cfg in format to w.
func Write(w io.Writer, cfg Config, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(cfg)
	case "env":
		_, err := fmt.Fprintf(w, "VITE_API_BASE_URL=%s\n", strconv.Quote(cfg.APIBaseURL))
		return err
	case "js":
		_, err := fmt.Fprintf(w, "export const apiBaseUrl = %s;\n", strconv.Quote(cfg.APIBaseURL))
		return err
	}
	return fmt.Errorf("unknown format %q (want one of %v)", format, Formats)
}

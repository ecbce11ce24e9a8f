// Command frontend-config resolves the frontend build configuration from
// VITE_API_BASE_URL and VITE_BACKEND_HOST and writes it for the frontend build.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"helloworld/frontend"
	"helloworld/utils"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.LookupEnv); err != nil {
		utils.LogError("FRONTEND_CONFIG", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, lookup func(string) (string, bool)) error {
	fs := flag.NewFlagSet("frontend-config", flag.ContinueOnError)
	format := fs.String("format", "json", "output format: "+strings.Join(frontend.Formats, ", "))
	out := fs.String("out", "", "write to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := frontend.Load(lookup)

	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create %s: %w", *out, err)
		}
		defer f.Close()
		w = f
	}
	return frontend.Write(w, cfg, *format)
}

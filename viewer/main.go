// Package main implements the robonav viewer: an HTTP server that runs
// searches on demand (JSON batch or live websocket stream) and serves run
// history aggregated from recorded parquet files.
package main

import (
	"embed"
	"flag"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/robonav/robonav/logging"
)

//go:embed web
var webFS embed.FS

func main() {
	addr := flag.String("addr", ":8091", "HTTP listen address")
	data := flag.String("data", "runs", "Comma-separated roots containing recorded parquet files")
	refresh := flag.Duration("refresh", 30*time.Second, "How often the run-history DB re-globs parquet files")
	staticDir := flag.String("static-dir", "", "Optional directory to serve instead of the embedded client")
	flag.Parse()

	logger := slog.New(logging.NewPrettyHandler(os.Stdout, nil))

	var roots []string
	for _, r := range strings.Split(*data, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roots = append(roots, r)
		}
	}

	srv := NewServer(roots, *refresh, logger)
	defer srv.Close()

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	if *staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(*staticDir)))
		logger.Info("serving static client", "dir", *staticDir)
	} else {
		sub, err := fs.Sub(webFS, "web")
		if err != nil {
			logger.Error("embedded client missing", "err", err)
			os.Exit(1)
		}
		mux.Handle("/", http.FileServer(http.FS(sub)))
	}

	logger.Info("viewer listening", "addr", *addr, "roots", roots)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

// Command docenc-server runs the optional HTTP surface: multipart
// encrypt/decrypt endpoints and a download endpoint over the same
// internal/pipeline core the CLI uses.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/redeaux-corp/docenc/internal/httpapi"
)

func main() {
	addr := flag.String("addr", ":8443", "listen address")
	flag.Parse()

	accessLog := log.New(os.Stdout, "access: ", log.LstdFlags)
	errorLog := log.New(os.Stderr, "error: ", log.LstdFlags)

	server := httpapi.NewServer(accessLog, errorLog)
	mux := http.NewServeMux()
	server.Routes(mux)

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errorLog.Printf("listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil {
		errorLog.Fatalf("server stopped: %v", err)
	}
}

package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/KyleBrandon/rasp-home-server/pkg/server"
	_ "github.com/lib/pq"
)

func main() {
	// parse the command-line flags
	flag.Parse()

	if err := server.InitializeServer(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

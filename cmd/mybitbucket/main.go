package main

import (
	"log/slog"
	"os"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/mybitbucket/internal/cli"
)

func main() {
	if err := cli.Execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		code := cli.ExitCode(err)
		if code != cli.ExitRecordErrors {
			slog.Error("fatal error", "error", err)
		}
		os.Exit(code)
	}
}

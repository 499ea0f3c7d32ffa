// Package main provides a deploy preflight tool. It verifies that the
// required environment variables are set and that required files exist,
// prints a per-check report, and exits non-zero if anything is missing.
// It does NOT touch the database or any external service.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var requiredEnvVars = []string{
	"SERVER_ENVIRONMENT",
	"PORT",
	"JWT_SECRET_KEY",
	"DB_HOST",
	"DB_PORT",
	"DB_USER",
	"DB_PASSWORD",
	"DB_NAME",
	"REDIS_ADDRESS",
	"RESEND_API_KEY",
	"EMAIL_FROM_ADDRESS",
	"DIGEST_SECRET",
}

var requiredFiles = []string{
	"db/migrations",
}

// secretMinLengths guards against placeholder values slipping into a deploy.
var secretMinLengths = map[string]int{
	"JWT_SECRET_KEY": 32,
	"DIGEST_SECRET":  16,
}

type check struct {
	name string
	ok   bool
	info string
}

func main() {
	baseDir := flag.String("base-dir", ".", "Directory required files are resolved against")
	quiet := flag.Bool("quiet", false, "Only print failing checks")
	flag.Parse()

	var checks []check

	for _, name := range requiredEnvVars {
		checks = append(checks, checkEnvVar(name))
	}
	for _, rel := range requiredFiles {
		checks = append(checks, checkFile(*baseDir, rel))
	}

	failed := 0
	for _, c := range checks {
		if c.ok {
			if !*quiet {
				fmt.Printf("  ok    %s\n", c.name)
			}
			continue
		}
		failed++
		fmt.Printf("  FAIL  %s: %s\n", c.name, c.info)
	}

	if failed > 0 {
		fmt.Printf("\npreflight: %d of %d checks failed\n", failed, len(checks))
		os.Exit(1)
	}
	fmt.Printf("\npreflight: all %d checks passed\n", len(checks))
}

func checkEnvVar(name string) check {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return check{name: "env " + name, info: "not set"}
	}
	if min, restricted := secretMinLengths[name]; restricted && len(value) < min {
		return check{
			name: "env " + name,
			info: fmt.Sprintf("too short, need at least %d characters", min),
		}
	}
	return check{name: "env " + name, ok: true}
}

func checkFile(baseDir, rel string) check {
	path := filepath.Join(baseDir, rel)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return check{name: "file " + rel, info: "missing"}
		}
		return check{name: "file " + rel, info: err.Error()}
	}
	return check{name: "file " + rel, ok: true}
}

// Command showc compiles light-dance shows and serves the artifacts.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lightdance/showcompiler/internal/version"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "serve":
		err = runServe(args)
	case "migrate":
		err = runMigrate(args, os.Stdout)
	case "seed":
		err = runSeed(args)
	case "fetch":
		err = runFetch(args, nil)
	case "version":
		fmt.Printf("showc version %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s: %v", command, err)
	}
}

func printUsage() {
	fmt.Println(`showc - light-dance show compiler

Usage: showc <command> [options]

Commands:
  serve      Serve control.dat, frame.dat and previews over HTTP
  migrate    Manage the show database schema (up|down|status|version N|force N)
  seed       Load a YAML show fixture into the database
  fetch      Download control.dat and frame.dat from a running server
  version    Show showc version
  help       Show this help message

Common Flags:
  --config <file>   JSON server config
  --db <path>       Show database path (overrides config)

Examples:
  showc migrate up --db show.db
  showc seed --db show.db testdata/show.yaml
  showc serve --config showc.json --listen :9000
  showc fetch --server http://localhost:8080 --request feng.json --out ./build`)
}

package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/lightdance/showcompiler/internal/db"
	"github.com/lightdance/showcompiler/internal/security"
)

// runSeed loads one YAML fixture into the store, migrating it first.
func runSeed(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	cf := addConfigFlags(fs)
	root := fs.String("root", "", "Extra directory fixtures may be read from")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: showc seed [--db path] <fixture.yaml>")
	}
	path := fs.Arg(0)

	var roots []string
	if *root != "" {
		roots = append(roots, *root)
	}
	if err := security.ValidateFixturePath(path, roots...); err != nil {
		return err
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	store, err := db.NewDB(cfg.GetDBPath())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	if err := store.LoadFixtureFile(path); err != nil {
		return err
	}
	log.Printf("seeded %s from %s", cfg.GetDBPath(), path)
	return nil
}

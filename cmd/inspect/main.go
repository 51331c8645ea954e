// Command inspect describes save blobs and the save catalogue without
// loading a game: header dumps, index listings and event stream summaries.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"tradewinds.dev/internal/persistence/index"
	persistlog "tradewinds.dev/internal/persistence/log"
	"tradewinds.dev/internal/persistence/snapshot"
)

func main() {
	var (
		indexPath = flag.String("index", "", "save catalogue to list (saves.db)")
		prune     = flag.Bool("prune", false, "drop catalogue rows whose blob is missing")
		eventsDir = flag.String("events", "", "event stream directory to summarise")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[inspect] ", 0)

	if *indexPath != "" {
		if err := listSaves(*indexPath, *prune); err != nil {
			logger.Fatalf("list saves: %v", err)
		}
	}
	if *eventsDir != "" {
		if err := summariseEvents(*eventsDir); err != nil {
			logger.Fatalf("read events: %v", err)
		}
	}
	for _, path := range flag.Args() {
		if err := dumpHeader(path); err != nil {
			logger.Fatalf("read %s: %v", path, err)
		}
	}
	if *indexPath == "" && *eventsDir == "" && flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: inspect [-index saves.db] [-events dir] [save.sav ...]")
		os.Exit(2)
	}
}

func listSaves(path string, prune bool) error {
	idx, err := index.Open(path)
	if err != nil {
		return err
	}
	defer idx.Close()

	if prune {
		removed, err := idx.Prune()
		if err != nil {
			return err
		}
		for _, s := range removed {
			fmt.Printf("pruned %s (%s)\n", s.ID, s.Path)
		}
	}
	saves, err := idx.List()
	if err != nil {
		return err
	}
	for _, s := range saves {
		fmt.Printf("%s  %-12s v%d  %s  micros=%d settlements=%d  %s\n",
			s.ID, s.Name, s.Version, s.CreatedAt, s.ClockMicros, s.Settlements, s.Path)
	}
	return nil
}

func dumpHeader(path string) error {
	header, err := snapshot.ReadHeader(path)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(header, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", path, b)
	return nil
}

func summariseEvents(dir string) error {
	events, err := persistlog.ReadDir(dir, "events")
	if err != nil {
		return err
	}
	byKind := map[string]int{}
	for _, e := range events {
		byKind[e.Kind]++
	}
	fmt.Printf("%d events\n", len(events))
	for kind, count := range byKind {
		fmt.Printf("  %-20s %d\n", kind, count)
	}
	return nil
}

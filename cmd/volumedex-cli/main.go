// Command volumedex-cli performs offline index-store maintenance: optimize,
// recover, and stats, the operator-facing counterparts to the actions the
// daemon otherwise only runs on its own schedule (spec.md §4.1).
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/volumedex/volumedex/internal/config"
	"github.com/volumedex/volumedex/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := log.New(os.Stderr, "[volumedex-cli] ", log.LstdFlags)

	idxStore, err := store.New(&cfg.Store, logger)
	if err != nil {
		log.Fatalf("failed to open index store at %s: %v", cfg.Store.Path, err)
	}
	defer idxStore.Close()

	switch os.Args[1] {
	case "optimize":
		runOptimize(idxStore)
	case "recover":
		runRecover(idxStore)
	case "stats":
		runStats(idxStore)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: volumedex-cli <optimize|recover|stats>")
}

func runOptimize(s *store.Store) {
	if err := s.Optimize(); err != nil {
		log.Fatalf("optimize failed: %v", err)
	}
	fmt.Println("optimize complete")
}

func runRecover(s *store.Store) {
	if err := s.Recover(); err != nil {
		log.Fatalf("recover failed: %v", err)
	}
	fmt.Println("recover complete")
}

func runStats(s *store.Store) {
	volumes, err := s.Volumes.ListVolumes()
	if err != nil {
		log.Fatalf("list volumes failed: %v", err)
	}

	var totalFiles int64
	var drifted int
	for _, v := range volumes {
		actual, err := s.Files.CountByVolume(v.ID)
		if err != nil {
			log.Fatalf("count files for %s failed: %v", v.ID, err)
		}
		totalFiles += actual
		consistent := actual == v.FileCount
		if !consistent {
			drifted++
		}
		fmt.Printf("%-20s %-12s files=%-10d recorded=%-10d consistent=%v excluded=%v\n",
			v.ID, v.DisplayName, actual, v.FileCount, consistent, v.Excluded)
	}

	thumbBytes, err := s.Thumbnails.ThumbnailCacheBytes()
	if err != nil {
		log.Fatalf("thumbnail cache size failed: %v", err)
	}

	fmt.Println()
	fmt.Printf("volumes:           %d\n", len(volumes))
	fmt.Printf("files (actual):    %d\n", totalFiles)
	fmt.Printf("drifted volumes:   %d\n", drifted)
	fmt.Printf("thumbnail bytes:   %d\n", thumbBytes)
}

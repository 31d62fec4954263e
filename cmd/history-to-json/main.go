package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/oneee-playground/glue-deployer/internal/history"
)

func main() {
	path := flag.String("journal", "", "journal file path")
	flag.Parse()

	if *path == "" {
		log.Fatal("argument is not enough")
	}

	entries, err := history.NewJournal(*path).Entries(context.Background())
	if err != nil {
		log.Fatal("reading journal ", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			log.Fatal(err)
		}
	}
}

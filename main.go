package main

import (
	"log"

	"github.com/kilianp07/pvcharge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("pvcharge: %v", err)
	}
}

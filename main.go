package main

import (
	"os"

	"github.com/talentfit/cv-ranker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

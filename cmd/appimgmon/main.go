// Package main provides the entry point for the appimgmon CLI.
package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/abcdqfr/AppImgMon/cmd/appimgmon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

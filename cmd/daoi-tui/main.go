package main

import (
	"fmt"
	"os"

	"github.com/QuesoDad/DownloadAllOfIt/internal/config"
	"github.com/QuesoDad/DownloadAllOfIt/internal/tui"
)

func main() {
	settings := config.DefaultSettings()
	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

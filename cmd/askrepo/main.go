package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/askrepo-ai/askrepo/pkg/config"
)

var version = "dev"

const defaultConfigPath = "askrepo.yaml"

func main() {
	root := &cobra.Command{
		Use:     "askrepo",
		Short:   "Ask questions about a GitHub repository through an LLM",
		Version: version,
	}

	root.AddCommand(
		newAskCmd(),
		newReportCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the YAML config. When the default path is requested
// and the file does not exist, built-in defaults are used instead.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

package cmd

import (
	"fmt"
	"os"

	ebisu "github.com/goldfish-inc/perseis-sub001/pkg"
	"github.com/spf13/cobra"
)

type funcFlag func(cmd *cobra.Command)

func versionFlag(cmd *cobra.Command) {
	hasVersionFlag, _ := cmd.Flags().GetBool("version")
	if hasVersionFlag {
		fmt.Printf("\nversion: %s\nbuild: %s\n\n", ebisu.Version, ebisu.Build)
		os.Exit(0)
	}
}

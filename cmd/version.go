package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the current version",
	Annotations: map[string]string{skipConfig: ""},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("practix", version)
	},
}

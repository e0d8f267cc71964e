/*
Copyright © 2025 Goldfish Inc.

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gnames/gn"
	"github.com/goldfish-inc/perseis-sub001/internal/iosources"
	"github.com/goldfish-inc/perseis-sub001/pkg/config"
	"github.com/spf13/cobra"
)

// getSourcesCmd returns the sources command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getSourcesCmd() *cobra.Command {
	sourcesCmd := &cobra.Command{
		Use:   "sources",
		Short: "Show configured registries",
		Long: `Sources shows the registries configured in sources.yaml.

For every registry it prints the authority weight, the identity fields
it maps (these decide which matching tiers its rows can reach) and the
full column-to-field mapping. Validation warnings are printed last;
a registry with warnings still imports, but some of its columns may go
to the extras bag or all of its rows may be skipped.

No database connection is needed.

Examples:
  ebisu sources`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runSources(cmd, args)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return sourcesCmd
}

func runSources(_ *cobra.Command, _ []string) error {
	registry, err := iosources.New(cfg).Load()
	if err != nil {
		return err
	}

	gn.Info("Registries configured in <em>%s</em>",
		config.SourcesFilePath(cfg.HomeDir))

	for _, src := range registry.Sources {
		fmt.Println(strings.Repeat("─", 60))
		gn.Info("<em>%s</em>  %s", src.Name, src.Title)
		if src.HomeURL != "" {
			gn.Message("Home: %s", src.HomeURL)
		}
		gn.Message("Authority: %.2f", src.Authority)

		identity := src.IdentityFields()
		if len(identity) > 0 {
			gn.Message("Identity fields: %s", strings.Join(identity, ", "))
		}

		cols := make([]string, 0, len(src.Fields))
		for col := range src.Fields {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		gn.Message("Column mapping:")
		for _, col := range cols {
			gn.Message("  %s: %s", col, src.Fields[col])
		}
	}

	if len(registry.Warnings) > 0 {
		fmt.Println(strings.Repeat("─", 60))
		for _, w := range registry.Warnings {
			gn.Warn("<em>Warning</em> [%s] %s: %s. %s",
				w.SourceName, w.Field, w.Message, w.Suggestion)
		}
	}

	return nil
}

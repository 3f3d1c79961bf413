package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/yourusername/osrs-mcp/internal/wikitext"
)

var templateTitle string

var templatesCmd = &cobra.Command{
	Use:   "templates [file]",
	Short: "Flatten the templates of a parse-tree XML document (stdin when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return eris.Wrapf(err, "opening %s", args[0])
			}
			defer f.Close()
			r = f
		}

		templates, err := wikitext.ParseTemplates(r)
		if err != nil {
			return err
		}
		if templateTitle != "" {
			templates = wikitext.FindTemplates(templates, templateTitle)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	},
}

func init() {
	templatesCmd.Flags().StringVar(&templateTitle, "title", "", "Only print templates with this exact title")
	rootCmd.AddCommand(templatesCmd)
}

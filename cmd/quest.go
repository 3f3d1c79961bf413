package cmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var questCmd = &cobra.Command{
	Use:   "quest <name>",
	Short: "Fetch a quest page and print its structured record as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, quests := newBackend()
		defer client.GetCache().Close()

		info, err := quests.GetQuestInfo(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	},
}

func init() {
	rootCmd.AddCommand(questCmd)
}

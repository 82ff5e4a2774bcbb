package cmd

import (
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/config"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/output"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all := config.All()
		rows := make([][]string, 0, len(all)+1)
		raw := map[string]string{}
		for _, kv := range all {
			rows = append(rows, []string{kv[0], kv[1]})
			raw[kv[0]] = kv[1]
		}
		rows = append(rows, []string{"(file)", config.GetConfigFile()})
		return output.Table([]string{"KEY", "VALUE"}, rows, raw)
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Persist a setting to the user config file",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(args[0], args[1]); err != nil {
			return err
		}
		output.PrintSuccess("✓ %s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

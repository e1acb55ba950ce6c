package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the loaded form definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := loadDefinitions(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, def := range defs {
				kind := "form"
				if def.Repeatable {
					kind = "group"
				}
				fmt.Fprintf(out, "%s (%s) %s\n", def.Name, kind, def.DisplayLabel())
				for _, field := range def.Fields {
					required := ""
					if field.Required {
						required = " *"
					}
					fmt.Fprintf(out, "  %-20s %-8s%s\n", field.Name, field.Type, required)
				}
			}
			return nil
		},
	}
}

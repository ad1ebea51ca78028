package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/ovhdcos/cmd/ovhdcos/handlers"
)

// runCatalog is the handler entry point. Replaced in tests.
var runCatalog = handlers.Catalog

// Catalog returns the catalog command.
func Catalog() *cobra.Command {
	var project, region string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List flavors, images and ssh keys of a project",
		Long: `Catalog prints the flavor, image and ssh key names a project offers,
grouped by region. Without --region every region offering flavors is listed.

Example:
  ovhdcos catalog --project "My Project" --region SBG1`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCatalog(cmd.Context(), project, region)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "OVH project description (required)")
	cmd.Flags().StringVar(&region, "region", "", "Only list this region")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

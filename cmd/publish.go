package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"heritage_tree/internal/service"
)

func newPublishCommand(a *app) *cobra.Command {
	var override service.PublishTarget
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Commit the current people to a GitHub file",
		RunE: func(cmd *cobra.Command, args []string) error {
			people, closeStore, err := a.openPeople(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeStore()

			data, err := service.ExportPeople(people.List())
			if err != nil {
				return err
			}
			target := a.cfg.Publish.Merge(override)
			sha, err := service.NewGitHubPublisher(a.logger).Publish(cmd.Context(), target, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %s/%s:%s at %s\n", target.Owner, target.Repo, target.Path, sha)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&override.Host, "host", "", "API base URL")
	flags.StringVar(&override.Owner, "owner", "", "repository owner")
	flags.StringVar(&override.Repo, "repo", "", "repository name")
	flags.StringVar(&override.Branch, "branch", "", "branch")
	flags.StringVar(&override.Path, "path", "", "file path in the repository")
	flags.StringVar(&override.Token, "token", "", "access token")
	return cmd
}

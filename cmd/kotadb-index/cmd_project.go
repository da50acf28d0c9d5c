package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jayminwest/kotadb-index/internal/projects"
)

var (
	projectUserID      string
	projectOrgID       string
	projectDescription string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects (named groupings of repositories)",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project owned by a user or an org",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := projects.Create(cmd.Context(), pool, projects.CreateOptions{
			UserID:      projectUserID,
			OrgID:       projectOrgID,
			Name:        args[0],
			Description: projectDescription,
		})
		if err != nil {
			return err
		}
		fmt.Println(p.ID)
		return nil
	},
}

var projectAddRepoCmd = &cobra.Command{
	Use:   "add-repo <project-id> <repository-id>",
	Short: "Link a repository into a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projects.AddRepository(cmd.Context(), pool, args[0], args[1])
	},
}

var projectRemoveRepoCmd = &cobra.Command{
	Use:   "remove-repo <project-id> <repository-id>",
	Short: "Unlink a repository from a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projects.RemoveRepository(cmd.Context(), pool, args[0], args[1])
	},
}

var projectListReposCmd = &cobra.Command{
	Use:   "list-repos <project-id>",
	Short: "List repositories linked to a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := projects.ListRepositories(cmd.Context(), pool, args[0])
		if err != nil {
			return err
		}
		for _, r := range repos {
			fmt.Printf("%s\t%s\n", r.ID, r.FullName)
		}
		return nil
	},
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectUserID, "user", "", "Owning user id")
	projectCreateCmd.Flags().StringVar(&projectOrgID, "org", "", "Owning org id")
	projectCreateCmd.Flags().StringVar(&projectDescription, "description", "", "Project description")
}

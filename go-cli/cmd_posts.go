package main

import (
	"github.com/spf13/cobra"
)

var (
	titleFlag   string
	contentFlag string
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List all posts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		if err := app.Refresh(cmd.Context()); err != nil {
			return finish(cmd, app, err)
		}
		renderPosts(cmd.OutOrStdout(), app.Feed(), app.Session().User)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Post counts per author",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := NewClient(apiURL).Stats(cmd.Context())
		if err != nil {
			return err
		}
		renderStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Show, create, edit or delete a single post",
}

var postShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := NewClient(apiURL).GetPost(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		renderPost(cmd.OutOrStdout(), p)
		return nil
	},
}

var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new post",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		return finish(cmd, app, app.CreatePost(cmd.Context(), titleFlag, contentFlag))
	},
}

var postEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the title and/or content of your post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		if _, err := app.BeginEdit(cmd.Context(), args[0]); err != nil {
			return finish(cmd, app, err)
		}
		var title, content *string
		if cmd.Flags().Changed("title") {
			title = &titleFlag
		}
		if cmd.Flags().Changed("content") {
			content = &contentFlag
		}
		return finish(cmd, app, app.SaveEdit(cmd.Context(), title, content))
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete your post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		return finish(cmd, app, app.DeletePost(cmd.Context(), args[0]))
	},
}

func init() {
	for _, c := range []*cobra.Command{postCreateCmd, postEditCmd} {
		c.Flags().StringVarP(&titleFlag, "title", "t", "", "post title")
		c.Flags().StringVarP(&contentFlag, "content", "c", "", "post content")
	}
	postCmd.AddCommand(postShowCmd, postCreateCmd, postEditCmd, postDeleteCmd)
	RootCmd.AddCommand(postsCmd, postCmd, statsCmd)
}

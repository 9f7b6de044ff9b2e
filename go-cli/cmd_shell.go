package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session that walks through the login, feed and edit views",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		return runShell(cmd.Context(), app, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	RootCmd.AddCommand(shellCmd)
}

type shell struct {
	app *App
	in  *bufio.Scanner
	out io.Writer

	// draft holds unsaved edits in the editing view
	draftTitle   *string
	draftContent *string
}

func runShell(ctx context.Context, app *App, in io.Reader, out io.Writer) error {
	sh := &shell{app: app, in: bufio.NewScanner(in), out: out}
	if app.View() == ViewFeed {
		_ = app.Refresh(ctx)
	}
	for {
		sh.render()
		line, ok := sh.prompt(app.View().String() + "> ")
		if !ok {
			return sh.in.Err()
		}
		name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)
		if name == "" {
			continue
		}
		if name == "quit" || name == "exit" {
			return nil
		}
		app.Message = ""
		err := sh.dispatch(ctx, name, arg)
		if errors.Is(err, ErrWrongView) || errors.Is(err, errUnknownCommand) {
			color.New(color.FgYellow).Fprintln(out, "Unknown command here; type help.")
			continue
		}
		renderMessage(out, app.Message, err != nil)
	}
}

var errUnknownCommand = errors.New("unknown command")

func (sh *shell) dispatch(ctx context.Context, name, arg string) error {
	app := sh.app
	if name == "help" {
		sh.help()
		return nil
	}

	switch app.View() {
	case ViewLogin:
		switch name {
		case "login":
			user, pw, ok := sh.credentials(arg)
			if !ok {
				return nil
			}
			return app.Login(ctx, user, pw)
		case "register":
			return app.ShowRegister()
		}
	case ViewRegister:
		switch name {
		case "register":
			user, pw, ok := sh.credentials(arg)
			if !ok {
				return nil
			}
			return app.Register(ctx, user, pw)
		case "back", "login":
			return app.ShowLogin()
		}
	case ViewFeed:
		switch name {
		case "refresh":
			return app.Refresh(ctx)
		case "new":
			title, _ := sh.prompt("Title: ")
			content, _ := sh.prompt("Content: ")
			return app.CreatePost(ctx, title, content)
		case "show":
			p, err := app.client.GetPost(ctx, arg)
			if err != nil {
				return app.fail(err, "Failed to load post.", "Error loading post.")
			}
			renderPost(sh.out, p)
			return nil
		case "edit":
			p, err := app.BeginEdit(ctx, arg)
			if err != nil {
				return err
			}
			sh.draftTitle, sh.draftContent = nil, nil
			renderPost(sh.out, p)
			return nil
		case "delete":
			return app.DeletePost(ctx, arg)
		case "logout":
			return app.Logout()
		}
	case ViewEditing:
		switch name {
		case "title":
			sh.draftTitle = &arg
			return nil
		case "content":
			sh.draftContent = &arg
			return nil
		case "save":
			return app.SaveEdit(ctx, sh.draftTitle, sh.draftContent)
		case "cancel":
			return app.CancelEdit()
		}
	}
	return errUnknownCommand
}

func (sh *shell) render() {
	switch sh.app.View() {
	case ViewFeed:
		renderPosts(sh.out, sh.app.Feed(), sh.app.Session().User)
	case ViewEditing:
		fmt.Fprintf(sh.out, "Editing %s\n", sh.app.EditingID())
	}
}

func (sh *shell) help() {
	var cmds []string
	switch sh.app.View() {
	case ViewLogin:
		cmds = []string{"login <username>", "register"}
	case ViewRegister:
		cmds = []string{"register <username>", "back"}
	case ViewFeed:
		cmds = []string{"refresh", "new", "show <id>", "edit <id>", "delete <id>", "logout"}
	case ViewEditing:
		cmds = []string{"title <text>", "content <text>", "save", "cancel"}
	}
	cmds = append(cmds, "help", "quit")
	for _, c := range cmds {
		fmt.Fprintln(sh.out, "  "+c)
	}
}

// credentials takes the username from arg or a prompt, then the password.
func (sh *shell) credentials(arg string) (string, string, bool) {
	user := arg
	if user == "" {
		var ok bool
		if user, ok = sh.prompt("Username: "); !ok {
			return "", "", false
		}
	}
	pw, ok := sh.prompt("Password: ")
	return strings.TrimSpace(user), pw, ok
}

func (sh *shell) prompt(label string) (string, bool) {
	fmt.Fprint(sh.out, label)
	if !sh.in.Scan() {
		return "", false
	}
	return sh.in.Text(), true
}

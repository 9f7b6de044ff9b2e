package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

const isoMillis = "2006-01-02T15:04:05.000Z"

func shortDate(iso string) string {
	t, err := time.Parse(isoMillis, iso)
	if err != nil {
		return iso
	}
	return t.Local().Format("2006-01-02 15:04")
}

func renderPosts(w io.Writer, posts []Post, me *User) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts yet.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"ID", "Title", "Author", "Posted", "Content"})

	for _, p := range posts {
		author := p.AuthorUsername
		if me != nil && p.AuthorID == me.ID {
			author = color.New(color.Bold, color.FgHiGreen).Sprint(author)
		}
		table.Append([]string{p.ID, p.Title, author, shortDate(p.DatePosted), oneLine(p.Content, 60)})
	}
	table.Render()
}

func renderStats(w io.Writer, stats []AuthorStat) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No posts yet.")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Author", "Posts", "Last posted"})
	for _, s := range stats {
		table.Append([]string{s.AuthorUsername, strconv.Itoa(s.Posts), shortDate(s.LastPosted)})
	}
	table.Render()
}

func renderPost(w io.Writer, p Post) {
	color.New(color.Bold).Fprintln(w, p.Title)
	fmt.Fprintf(w, "by %s on %s  (%s)\n\n", p.AuthorUsername, shortDate(p.DatePosted), p.ID)
	fmt.Fprintln(w, p.Content)
}

func renderMessage(w io.Writer, msg string, failed bool) {
	if msg == "" {
		return
	}
	if failed {
		color.New(color.FgHiRed).Fprintln(w, msg)
		return
	}
	color.New(color.FgHiGreen).Fprintln(w, msg)
}

func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}

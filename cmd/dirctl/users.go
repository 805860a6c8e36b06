package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"github.com/nekogravitycat/directory-portal/internal/directory"
	"github.com/nekogravitycat/directory-portal/internal/pkg/pagination"
)

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account the token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := c.client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), *u)
			return nil
		},
	}
}

func (c *cli) usersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Work with organization users",
	}
	usersCmd.AddCommand(c.usersListCmd(), c.usersGetCmd(), c.usersRenameCmd(), c.usersDeleteCmd())
	return usersCmd
}

func (c *cli) usersListCmd() *cobra.Command {
	var (
		page    int
		perPage int
		orgID   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of organization users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var g errs.Group
			if page < 1 {
				g.Add(errs.New("--page must be at least 1"))
			}
			if perPage < 1 || perPage > 1000 {
				g.Add(errs.New("--per-page must be between 1 and 1000"))
			}
			if err := g.Err(); err != nil {
				return err
			}

			list, err := c.client.Users(cmd.Context(), page, perPage, orgID)
			if err != nil {
				return err
			}
			printUserList(cmd.OutOrStdout(), list, page, perPage)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&page, "page", 1, "Page number")
	f.IntVar(&perPage, "per-page", 10, "Users per page")
	f.StringVar(&orgID, "org-id", "", "Organization id (default: the server's ORG_ID)")
	return cmd
}

func (c *cli) usersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.client.User(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func (c *cli) usersRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID NAME...",
		Short: `Rename a user; NAME is "Last First Middle"`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := directory.NameText(strings.Join(args[1:], " "))
			res, err := c.client.UpdateUserName(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func (c *cli) usersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.client.DeleteUser(cmd.Context(), args[0]); err != nil {
				return directory.Classify(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", args[0])
			return nil
		},
	}
}

func printUser(w io.Writer, u directory.User) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", k, v)
		}
	}
	row("id", u.ID)
	row("login", u.Nickname)
	row("name", directory.ToDisplayString(u.Name))
	row("email", u.Email)
	row("position", u.Position)
	row("image", u.Image)
	_ = tw.Flush()
}

func printResult(w io.Writer, res directory.Result) {
	printUser(w, res.User)
	if res.IsDegraded() {
		fmt.Fprintf(w, "warning: %s\n", res.Reason)
	}
}

func printUserList(w io.Writer, list *directory.UserList, page, perPage int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPOSITION")
	for _, u := range list.Users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, directory.ToDisplayString(u.Name), u.Email, u.Position)
	}
	_ = tw.Flush()

	if list.Page > 0 {
		page = list.Page
	}
	total := list.TotalPages(perPage)
	if total == 0 {
		fmt.Fprintln(w, "no users")
		return
	}

	links := make([]string, 0, pagination.DefaultMaxVisible)
	for _, p := range pagination.VisiblePages(page, total, pagination.DefaultMaxVisible) {
		s := strconv.Itoa(p)
		if p == page {
			s = "[" + s + "]"
		}
		links = append(links, s)
	}
	fmt.Fprintf(w, "page %d of %d (%d users)  %s\n", page, total, list.Total, strings.Join(links, " "))
}

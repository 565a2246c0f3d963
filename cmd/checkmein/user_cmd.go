package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/byliew07/CheckMeIN/internal/model"
	"github.com/byliew07/CheckMeIN/internal/service"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify credentials and show the user's role",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.svc.Authenticate(username, password)
			if err != nil {
				return a.report(cmd, "", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s (%s)\n", user.Label(), user.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserCmd(a *app) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var role string
	addCmd := &cobra.Command{
		Use:   "add <username> <password>",
		Short: "Add a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.svc.AddUser(cmd.Context(), args[0], args[1], model.Role(role))
			return a.report(cmd, msg, err)
		},
	}
	addCmd.Flags().StringVarP(&role, "role", "r", string(model.RoleStudent), "admin | lecturer | student")

	deleteCmd := &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.svc.DeleteUser(cmd.Context(), args[0])
			return a.report(cmd, msg, err)
		},
	}

	var listRole string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USERNAME\tROLE\tDISPLAY NAME")
			for _, u := range a.svc.ListUsers(model.Role(listRole)) {
				dn := ""
				if u.DisplayName != nil {
					dn = *u.DisplayName
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", u.Username, u.Role, dn)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVarP(&listRole, "role", "r", "", "filter by role")

	displayNameCmd := &cobra.Command{
		Use:   "display-name <username> <display name>",
		Short: "Set a user's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.svc.SetDisplayName(cmd.Context(), args[0], args[1])
			return a.report(cmd, msg, err)
		},
	}

	userCmd.AddCommand(addCmd, deleteCmd, listCmd, displayNameCmd)
	return userCmd
}

func newClassCmd(a *app) *cobra.Command {
	classCmd := &cobra.Command{
		Use:   "class",
		Short: "Manage classes",
	}

	var lecturer string
	addCmd := &cobra.Command{
		Use:   "add <class name>",
		Short: "Add a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.svc.AddClass(cmd.Context(), args[0], lecturer)
			return a.report(cmd, msg, err)
		},
	}
	addCmd.Flags().StringVarP(&lecturer, "lecturer", "l", "", "lecturer username")

	deleteCmd := &cobra.Command{
		Use:   "delete <class name>",
		Short: "Delete a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.svc.DeleteClass(cmd.Context(), args[0])
			return a.report(cmd, msg, err)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CLASS\tLECTURER")
			for _, c := range a.svc.Classes() {
				fmt.Fprintf(w, "%s\t%s\n", c.ClassName, c.LecturerUsername)
			}
			return w.Flush()
		},
	}

	classCmd.AddCommand(addCmd, deleteCmd, listCmd)
	return classCmd
}

// studentLabels 用户名 → 展示名
func studentLabels(svc service.AttendanceService) map[string]string {
	labels := make(map[string]string)
	for _, u := range svc.ListUsers(model.RoleStudent) {
		labels[u.Username] = u.Label()
	}
	return labels
}

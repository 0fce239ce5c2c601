package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solverpad/solverpad/session"
)

func newSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage chat sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all sessions, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := app.sessionStore()
			if err != nil {
				return err
			}
			for _, sess := range sessions.List() {
				file := sess.FilePath
				if file == "" && sess.ID != session.GlobalID {
					file = "(file gone)"
				}
				fmt.Printf("%-20s %-24s %3d messages  %s\n",
					sess.ID, sess.Title, len(sess.Messages), file)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <id>",
		Short: "Empty a session's message log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := app.sessionStore()
			if err != nil {
				return err
			}
			return sessions.Clear(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session (the global session is reset instead)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := app.sessionStore()
			if err != nil {
				return err
			}
			if !sessions.Delete(args[0]) {
				return fmt.Errorf("unknown session %q", args[0])
			}
			return nil
		},
	})

	return cmd
}

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd(app *App) *cobra.Command {
	var (
		filePath  string
		sessionID string
		fresh     bool
	)

	cmd := &cobra.Command{
		Use:   "chat <message...>",
		Short: "Send a message on a chat session",
		Long: `Chat dispatches a message to the configured AI backend. With --file the
conversation is tied to that solution file: the session is keyed by the file,
and the problem statement plus current code travel with the message. Without
a file the global session is used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := app.sessionStore()
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}

			id := sessionID
			if id == "" {
				if fresh {
					sess, err := sessions.Create(filePath)
					if err != nil {
						return fmt.Errorf("create session: %w", err)
					}
					id = sess.ID
				} else {
					sess, err := sessions.GetOrCreate(filePath)
					if err != nil {
						return fmt.Errorf("resolve session: %w", err)
					}
					id = sess.ID
				}
			}

			service := app.newChatService(sessions)
			reply, err := service.Dispatch(cmd.Context(), id, strings.Join(args, " "), filePath)
			if reply != "" {
				fmt.Println(reply)
			}
			// A classified dispatch failure is already rendered into the
			// conversation; surface it as a non-zero exit without re-printing.
			if err != nil {
				cmd.SilenceErrors = true
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Solution file this conversation is about")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Existing session id to continue")
	cmd.Flags().BoolVar(&fresh, "new", false, "Start a fresh session instead of continuing")
	return cmd
}

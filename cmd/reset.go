package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	Long:  "Delete the learner's transcripts, reminders, custom subjects and lesson count.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := setup(cmd, logToStderr)
		if err != nil {
			return err
		}
		defer rt.Close()

		sess, err := rt.openSession(ctx, cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Fprintf(out, "Reset all progress for %q? [y/N]: ", sess.UserID)
			in := bufio.NewScanner(cmd.InOrStdin())
			if !in.Scan() || !isYes(in.Text()) {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}

		if err := sess.Reset(ctx); err != nil {
			return err
		}
		rt.logger.Info("learner reset", "user", sess.UserID)
		fmt.Fprintf(out, "Progress for %q has been reset.\n", sess.UserID)
		return nil
	},
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

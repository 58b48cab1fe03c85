package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/olive/internal/progress"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
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
		lessons := sess.Progress.Value()
		fmt.Fprintf(out, "Learner:   %s %s\n", sess.UserID, sess.Avatar())
		fmt.Fprintf(out, "Lessons:   %d\n", lessons)
		if progress.IsUnlocked(lessons) {
			fmt.Fprintln(out, "Games:     unlocked")
		} else {
			fmt.Fprintf(out, "Games:     locked (%d more lesson(s) to go)\n", progress.Remaining(lessons))
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Subjects")
		fmt.Fprintln(out, strings.Repeat("─", 40))
		active := sess.Subjects.Active().ID
		for _, s := range sess.Subjects.All() {
			marker := " "
			if s.ID == active {
				marker = "▸"
			}
			fmt.Fprintf(out, "%s %s %s\n", marker, s.Icon, s.Name)
		}

		fmt.Fprintln(out)
		reminders := sess.Reminders.All()
		fmt.Fprintf(out, "Reminders (%d)\n", len(reminders))
		fmt.Fprintln(out, strings.Repeat("─", 40))
		for _, r := range reminders {
			fmt.Fprintf(out, "%-19s  %-8s  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Type, r.Text)
		}
		return nil
	},
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/olive/internal/app"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the Olive app in the terminal",
	Long:  "Open the Olive app in the terminal. This is what running olive with no command does.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func init() {
	chatCmd.Flags().Bool("skip-welcome", false, "Open straight on the home screen")
	addOfflineFlag(chatCmd)
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	rt, err := setup(cmd, logToFile)
	if err != nil {
		return err
	}
	defer rt.Close()

	h, gen, offline, err := rt.services(ctx, cmd)
	if err != nil {
		return err
	}
	sess, err := rt.openSession(ctx, cmd)
	if err != nil {
		return err
	}

	skip, _ := cmd.Flags().GetBool("skip-welcome")
	return app.Run(app.Options{
		Session:     sess,
		Tutor:       h,
		Quiz:        gen,
		Logger:      rt.logger,
		Offline:     offline,
		SkipWelcome: skip,
	})
}

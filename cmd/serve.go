package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/olive/internal/server"
	"github.com/abhisek/olive/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve learner sessions over HTTP and WebSocket",
	Long: `Serve the Olive API. Each learner is picked with the X-Olive-User header
or the user query parameter; requests without one use the --user profile.
Chat replies stream over /ws/chat.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := setup(cmd, logToStderr)
		if err != nil {
			return err
		}
		defer rt.Close()

		h, gen, _, err := rt.services(ctx, cmd)
		if err != nil {
			return err
		}
		defaultUser, err := rt.resolveUser(ctx, cmd)
		if err != nil {
			return err
		}

		hub := server.NewHub(func(userID string) *session.Session {
			return session.New(userID, rt.store.Learner(userID), rt.logger.With("user", userID))
		})

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = rt.cfg.Addr
		}

		srv := server.New(server.Options{
			Hub:            hub,
			Tutor:          h,
			Quiz:           gen,
			DefaultUser:    defaultUser,
			AllowedOrigins: rt.cfg.AllowedOrigins,
			SessionIdle:    rt.cfg.SessionIdle,
			Logger:         rt.logger,
		})
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides OLIVE_ADDR)")
	addOfflineFlag(serveCmd)
}

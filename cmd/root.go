package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "olive",
	Short: "A friendly AI learning companion for kids",
	Long: `Olive is a terminal learning companion for kids. Chat with Olive, study a
subject with a patient tutor, take quick quizzes and unlock the Game Corner
by finishing lessons.

Olive needs an LLM API key. Set one of GROQ_API_KEY, GEMINI_API_KEY,
OPENAI_API_KEY, ANTHROPIC_API_KEY or OPENROUTER_API_KEY, or choose a provider
with OLIVE_LLM_PROVIDER and OLIVE_<PROVIDER>_API_KEY. Settings may also be
put in a .env file in the working directory.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides OLIVE_DB env var)")
	rootCmd.PersistentFlags().String("user", "", "Learner profile to use (overrides OLIVE_USER; default: most recent)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides OLIVE_LOG_LEVEL)")
	addOfflineFlag(rootCmd)

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

func addOfflineFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("offline", false, "Use the built-in offline provider instead of a real LLM")
}

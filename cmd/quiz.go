package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/olive/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz [topic]",
	Short: "Ask one quiz question in the terminal",
	Long: `Generate one multiple-choice question and grade the answer typed on
stdin. Without a topic the learner's active subject is used.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := setup(cmd, logToStderr)
		if err != nil {
			return err
		}
		defer rt.Close()

		_, gen, _, err := rt.services(ctx, cmd)
		if err != nil {
			return err
		}

		topic := strings.TrimSpace(strings.Join(args, " "))
		if topic == "" {
			sess, err := rt.openSession(ctx, cmd)
			if err != nil {
				return err
			}
			topic = sess.QuizTopic()
		}

		out := cmd.OutOrStdout()
		q, err := gen.Generate(ctx, topic)
		if err != nil {
			rt.logger.Warn("quiz generation failed", "topic", topic, "err", err)
		}
		fmt.Fprintln(out, q.String())
		if q.IsFallback() {
			return nil
		}

		letters := make([]string, len(q.Choices))
		for i, c := range q.Choices {
			letters[i] = c.Letter
		}
		in := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprintf(out, "Your answer (%s): ", strings.Join(letters, "/"))
			if !in.Scan() {
				fmt.Fprintln(out)
				return in.Err()
			}
			correct, err := q.Grade(in.Text())
			if errors.Is(err, quiz.ErrInvalidAnswer) {
				fmt.Fprintln(out, "Please pick one of the letters.")
				continue
			}
			if err != nil {
				return err
			}
			printVerdict(cmd, q, correct)
			return nil
		}
	},
}

func printVerdict(cmd *cobra.Command, q *quiz.Question, correct bool) {
	out := cmd.OutOrStdout()
	if correct {
		fmt.Fprintln(out, "✓ Correct!")
	} else {
		answer := q.Correct
		if c, ok := q.CorrectChoice(); ok {
			answer = c.Letter + ") " + c.Text
		}
		fmt.Fprintf(out, "✗ Not quite. The answer is %s\n", answer)
	}
	if q.Explanation != "" {
		fmt.Fprintln(out, q.Explanation)
	}
}

func init() {
	addOfflineFlag(quizCmd)
}

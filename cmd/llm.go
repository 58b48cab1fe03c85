package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/olive/internal/config"
	"github.com/abhisek/olive/internal/llm"
	"github.com/abhisek/olive/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openEvents(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM calls recorded yet.")
			return nil
		}

		tw := newTable(out, "ID", "TIME", "PURPOSE", "MODEL", "IN", "OUT", "MS", "")
		for _, e := range events {
			status := "✓"
			if !e.Success {
				status = "✗"
			}
			if e.Streamed {
				status += " stream"
			}
			tw.row(
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format("01-02 15:04:05"),
				e.Purpose,
				truncate(e.Model, 32),
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				status,
			)
		}
		return tw.flush()
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		s, err := openEvents(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("no LLM call with id %d", id)
		}

		out := cmd.OutOrStdout()
		tw := newTable(out)
		tw.row("Time", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		tw.row("Provider", e.Provider)
		tw.row("Model", e.Model)
		tw.row("Purpose", e.Purpose)
		tw.row("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens))
		tw.row("Latency", fmt.Sprintf("%dms", e.LatencyMs))
		tw.row("Streamed", strconv.FormatBool(e.Streamed))
		tw.row("Success", strconv.FormatBool(e.Success))
		if e.ErrorMessage != "" {
			tw.row("Error", e.ErrorMessage)
		}
		if err := tw.flush(); err != nil {
			return err
		}

		section(out, "REQUEST", e.RequestBody)
		section(out, "RESPONSE", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage by purpose and estimated cost by model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openEvents(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM calls recorded yet.")
			return nil
		}

		fmt.Fprintln(out, "By purpose")
		tw := newTable(out, "PURPOSE", "CALLS", "IN", "OUT", "AVG MS")
		var calls, in, outTok int
		for _, u := range byPurpose {
			tw.row(u.Purpose, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
				strconv.Itoa(u.OutputTokens), strconv.FormatInt(u.AvgLatencyMs, 10))
			calls += u.Calls
			in += u.InputTokens
			outTok += u.OutputTokens
		}
		tw.row("total", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(outTok), "")
		if err := tw.flush(); err != nil {
			return err
		}

		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Estimated cost (USD)")
		tw = newTable(out, "MODEL", "CALLS", "IN", "OUT", "COST")
		var total float64
		var unpriced []string
		for _, u := range byModel {
			cost := "?"
			if price := llm.LookupCost(u.Model); price != nil {
				c := price.Cost(u.InputTokens, u.OutputTokens)
				total += c
				cost = formatCost(c)
			} else {
				unpriced = append(unpriced, u.Model)
			}
			tw.row(truncate(u.Model, 32), strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
				strconv.Itoa(u.OutputTokens), cost)
		}
		label := "total"
		if len(unpriced) > 0 {
			label = "total (partial)"
		}
		tw.row(label, "", "", "", formatCost(total))
		if err := tw.flush(); err != nil {
			return err
		}
		if len(unpriced) > 0 {
			fmt.Fprintf(out, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

// openEvents opens the store for read-only event inspection. No learner
// profile is resolved or created.
func openEvents(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

type table struct {
	w *tabwriter.Writer
}

func newTable(out io.Writer, headers ...string) *table {
	t := &table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	if len(headers) > 0 {
		t.row(headers...)
	}
	return t
}

func (t *table) row(cells ...string) {
	fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return t.w.Flush()
}

// section prints a titled body, pretty-printing it when it is JSON.
func section(out io.Writer, title, body string) {
	fmt.Fprintf(out, "\n── %s ──\n", title)
	if body == "" {
		fmt.Fprintln(out, "(not captured)")
		return
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, []byte(body), "", "  ") == nil {
		body = pretty.String()
	}
	fmt.Fprintln(out, body)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "",
		"Only show one purpose ("+strings.Join([]string{llm.PurposeChat, llm.PurposeStudy, llm.PurposeQuiz}, ", ")+")")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}

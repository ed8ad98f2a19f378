package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/cli"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
)

var eventsFlags struct {
	types  []string
	actor  string
	forum  string
	policy string
	start  string
	end    string
	limit  int
	offset int
	format string
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Query the audit trail",
	Long: `Query governance events from the audit trail.

Events are returned oldest first. All filters combine with AND.

Examples:
  # Every event a user caused
  eleu events --actor u-1

  # Payments in a time range
  eleu events --type payment_processed --start 2026-08-01T00:00:00Z

  # Everything that happened to one policy, as JSON
  eleu events --policy pol-1234 --format json`,
	RunE: queryEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().StringSliceVar(&eventsFlags.types, "type", nil, "event type filter (repeatable)")
	eventsCmd.Flags().StringVar(&eventsFlags.actor, "actor", "", "acting user filter")
	eventsCmd.Flags().StringVar(&eventsFlags.forum, "forum", "", "forum id filter")
	eventsCmd.Flags().StringVar(&eventsFlags.policy, "policy", "", "policy id filter")
	eventsCmd.Flags().StringVar(&eventsFlags.start, "start", "", "inclusive range start (RFC 3339)")
	eventsCmd.Flags().StringVar(&eventsFlags.end, "end", "", "inclusive range end (RFC 3339)")
	eventsCmd.Flags().IntVar(&eventsFlags.limit, "limit", 50, "maximum events returned")
	eventsCmd.Flags().IntVar(&eventsFlags.offset, "offset", 0, "events to skip")
	eventsCmd.Flags().StringVar(&eventsFlags.format, "format", "text", "output format: text, json")
}

func queryEvents(cmd *cobra.Command, args []string) error {
	q := &events.Query{
		Actor:    eventsFlags.actor,
		ForumID:  eventsFlags.forum,
		PolicyID: eventsFlags.policy,
		Limit:    eventsFlags.limit,
		Offset:   eventsFlags.offset,
	}

	for _, t := range eventsFlags.types {
		et := events.EventType(t)
		if !et.Valid() {
			return fmt.Errorf("unknown event type %q", t)
		}
		q.Types = append(q.Types, et)
	}

	for name, pair := range map[string]struct {
		raw string
		dst **time.Time
	}{
		"start": {eventsFlags.start, &q.Start},
		"end":   {eventsFlags.end, &q.End},
	} {
		if pair.raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, pair.raw)
		if err != nil {
			return fmt.Errorf("invalid --%s: %w", name, err)
		}
		*pair.dst = &ts
	}

	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	storage, err := buildEventStorage(cfg)
	if err != nil {
		return cli.NewCommandError("events", err)
	}
	defer storage.Close()

	matched, err := storage.Query(cmd.Context(), q)
	if err != nil {
		return cli.NewCommandError("events", err)
	}
	total, err := storage.Count(cmd.Context(), q)
	if err != nil {
		return cli.NewCommandError("events", err)
	}

	if eventsFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, map[string]any{
			"events": matched,
			"total":  total,
		})
	}

	for _, ev := range matched {
		fmt.Printf("%s  %-20s  actor=%s", ev.Timestamp.Format(time.RFC3339), ev.Type, ev.Actor)
		if ev.PolicyID != "" {
			fmt.Printf("  policy=%s", ev.PolicyID)
		}
		if ev.ForumID != "" {
			fmt.Printf("  forum=%s", ev.ForumID)
		}
		fmt.Println()
	}
	fmt.Printf("%d of %d event(s)\n", len(matched), total)
	return nil
}

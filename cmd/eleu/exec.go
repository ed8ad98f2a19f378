package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/cli"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/engine"
)

var execFlags struct {
	policy string
	rule   string
	forum  string
	actor  string
	format string
}

var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Execute one policy rule",
	Long: `Execute one rule of a registered policy.

Execution instantiates the rule's target (forum, service activation, or
child policy) with full permission checks and audit recording, exactly as
the HTTP API would. Re-executing a rule that already succeeded returns the
recorded back-reference without side effects.

Examples:
  # Execute by rule statement name
  eleu exec --policy pol-1234 --rule intake --actor u-1

  # Execute inside a governing forum
  eleu exec --policy pol-1234 --rule payment --forum frm-5678 --actor u-2`,
	RunE: execRule,
}

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().StringVar(&execFlags.policy, "policy", "", "policy id")
	execCmd.Flags().StringVar(&execFlags.rule, "rule", "", "rule id or statement name")
	execCmd.Flags().StringVar(&execFlags.forum, "forum", "", "governing forum id (optional)")
	execCmd.Flags().StringVar(&execFlags.actor, "actor", "", "acting user id")
	execCmd.Flags().StringVar(&execFlags.format, "format", "text", "output format: text, json")

	_ = execCmd.MarkFlagRequired("policy")
	_ = execCmd.MarkFlagRequired("rule")
	_ = execCmd.MarkFlagRequired("actor")
}

func execRule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	st, err := buildStore(cfg)
	if err != nil {
		return cli.NewCommandError("exec", err)
	}
	defer st.Close()

	storage, err := buildEventStorage(cfg)
	if err != nil {
		return cli.NewCommandError("exec", err)
	}
	defer storage.Close()

	eng := engine.New(engine.Options{
		Store:   st,
		Emitter: buildEmitter(cfg, storage),
		Config:  cfg.Engine,
	})

	result, err := eng.Execute(cmd.Context(), engine.ExecutionRequest{
		PolicyID:   execFlags.policy,
		RuleID:     execFlags.rule,
		ForumID:    execFlags.forum,
		ExecutedBy: execFlags.actor,
	})
	if err != nil {
		return cli.NewCommandError("exec", err)
	}

	if execFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, result)
	}

	if result.AlreadyExecuted {
		fmt.Printf("✓ Rule already executed: %s %s\n", result.Kind, result.InstantiatedID)
		return nil
	}
	fmt.Printf("✓ Executed: %s %s\n", result.Kind, result.InstantiatedID)
	for _, ev := range result.Events {
		fmt.Printf("  event %s (%s)\n", ev.Type, ev.ID)
	}
	if result.Degraded {
		fmt.Printf("⚠  Degraded: %s\n", result.Warning)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abelbrown/rickdex/internal/brain"
	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/describe"
)

func init() {
	cmd := &cobra.Command{
		Use:   "describe <id>",
		Short: "Describe a character with the configured text generator",
		Long: "Fetches the character and asks the configured text generators for a short description.\n" +
			"When none is configured or every one fails, the templated description is printed instead.",
		Args: cobra.ExactArgs(1),
		RunE: runDescribe,
	}
	cmd.Flags().Bool("template", false, "Skip the generators and print the templated description")
	cmd.Flags().Bool("prompt", false, "Print the prompt instead of generating")
	cmd.Flags().String("provider", "", "Use only this generator (gemini, openai, claude, ollama)")
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	templateOnly, _ := cmd.Flags().GetBool("template")
	promptOnly, _ := cmd.Flags().GetBool("prompt")
	only, _ := cmd.Flags().GetString("provider")

	id, err := character.ParseID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, closeFn := newClient(cfg)
	defer closeFn()

	c, err := client.Get(cmd.Context(), id)
	if err != nil {
		return fail("get", err)
	}

	w := cmd.OutOrStdout()
	if promptOnly {
		fmt.Fprintln(w, describe.SystemPrompt)
		fmt.Fprintln(w)
		fmt.Fprintln(w, describe.Prompt(c))
		return nil
	}

	var gen describe.Generator
	if !templateOnly {
		m := brain.FromConfig(cmd.Context(), cfg)
		if only != "" {
			p := m.GetByName(only)
			if p == nil {
				return fmt.Errorf("provider %q is not configured (available: %s)", only, strings.Join(m.ListAvailable(), ", "))
			}
			m = brain.NewManager(p)
		}
		gen = m
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AITimeout())
	defer cancel()
	res := describe.Describe(ctx, gen, c, cfg.AI.MaxTokens)

	if formatFlag == "json" {
		return printJSON(w, map[string]any{
			"id":        res.CharacterID,
			"text":      res.Text,
			"generated": res.Generated,
			"provider":  res.Provider,
		})
	}

	fmt.Fprintf(w, "#%d %s\n\n%s\n\n", c.ID, c.Name, res.Text)
	if res.Generated {
		fmt.Fprintf(w, "(generated by %s)\n", res.Provider)
	} else {
		fmt.Fprintln(w, "(template)")
		if res.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "generator: %v\n", res.Err)
		}
	}
	return nil
}

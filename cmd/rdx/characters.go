package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abelbrown/rickdex/internal/character"
)

func init() {
	var ff filterFlags
	addFilterFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&ff.name, "name", "", "Filter by name substring")
		cmd.Flags().StringVarP(&ff.status, "status", "s", "", "Filter by status: alive, dead, unknown")
		cmd.Flags().StringVar(&ff.species, "species", "", "Filter by species")
		cmd.Flags().StringVar(&ff.kind, "type", "", "Filter by type")
		cmd.Flags().StringVarP(&ff.gender, "gender", "g", "", "Filter by gender: female, male, genderless, unknown")
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch one page of characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			f, err := ff.filters()
			if err != nil {
				return err
			}
			return runList(cmd, page, f)
		},
	}
	listCmd.Flags().IntP("page", "p", 1, "Page number")
	addFilterFlags(listCmd)

	getCmd := &cobra.Command{
		Use:   "get <id> [id...]",
		Short: "Fetch characters by id",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runGet,
	}

	searchCmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Search characters by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			return runSearch(cmd, args[0], page)
		},
	}
	searchCmd.Flags().IntP("page", "p", 1, "Page number")

	urlCmd := &cobra.Command{
		Use:   "url [id]",
		Short: "Print the request URL for a character or a filtered list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ff.filters()
			if err != nil {
				return err
			}
			return runURL(cmd, args, f)
		},
	}
	addFilterFlags(urlCmd)

	rootCmd.AddCommand(listCmd, getCmd, searchCmd, urlCmd)
}

func runList(cmd *cobra.Command, page int, f character.Filters) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, closeFn := newClient(cfg)
	defer closeFn()

	p, err := client.List(cmd.Context(), page, f)
	if err != nil {
		return fail("list", err)
	}

	w := cmd.OutOrStdout()
	if formatFlag == "json" {
		return printJSON(w, p)
	}
	fmt.Fprintf(w, "page %d/%d, %d characters\n", page, p.Info.Pages, p.Info.Count)
	return printCharacters(w, p.Results)
}

func runGet(cmd *cobra.Command, args []string) error {
	ids := make([]int, len(args))
	for i, a := range args {
		id, err := character.ParseID(a)
		if err != nil {
			return err
		}
		ids[i] = id
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, closeFn := newClient(cfg)
	defer closeFn()

	if len(ids) == 1 {
		c, err := client.Get(cmd.Context(), ids[0])
		if err != nil {
			return fail("get", err)
		}
		if formatFlag == "json" {
			return printJSON(cmd.OutOrStdout(), c)
		}
		return printDetail(cmd, c)
	}

	cs, err := client.GetMany(cmd.Context(), ids)
	if err != nil {
		return fail("get", err)
	}
	return printCharacters(cmd.OutOrStdout(), cs)
}

func printDetail(cmd *cobra.Command, c character.Character) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "#%d %s\n", c.ID, c.Name)
	fmt.Fprintf(w, "  status:    %s\n", c.Status.Label())
	fmt.Fprintf(w, "  species:   %s\n", c.Species)
	if c.Type != "" {
		fmt.Fprintf(w, "  type:      %s\n", c.Type)
	}
	fmt.Fprintf(w, "  gender:    %s\n", c.Gender.Label())
	fmt.Fprintf(w, "  origin:    %s\n", c.Origin.Name)
	fmt.Fprintf(w, "  location:  %s\n", c.Location.Name)
	fmt.Fprintf(w, "  episodes:  %d\n", c.EpisodeCount())
	if ids := c.EpisodeIDs(); len(ids) > 0 {
		fmt.Fprintf(w, "  first/last: #%d / #%d\n", ids[0], ids[len(ids)-1])
	}
	fmt.Fprintf(w, "  image:     %s\n", c.Image)
	return nil
}

func runSearch(cmd *cobra.Command, name string, page int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, closeFn := newClient(cfg)
	defer closeFn()

	p, err := client.SearchByName(cmd.Context(), name, page)
	if err != nil {
		return fail("search", err)
	}
	if formatFlag == "json" {
		return printJSON(cmd.OutOrStdout(), p)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d matches for %q\n", p.Info.Count, name)
	return printCharacters(cmd.OutOrStdout(), p.Results)
}

func runURL(cmd *cobra.Command, args []string, f character.Filters) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Cache.Disabled = true
	client, closeFn := newClient(cfg)
	defer closeFn()

	id := 0
	if len(args) == 1 {
		if id, err = character.ParseID(args[0]); err != nil {
			return err
		}
		if !character.ValidID(id, client.MaxID()) {
			return fmt.Errorf("character id must be between 1 and %d, got %d", client.MaxID(), id)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), client.URL(f, id))
	return nil
}

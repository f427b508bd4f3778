package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"podcat/internal/content"
	"podcat/internal/models"
)

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	var format string
	var recent int

	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List episodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := resolveFormat(cmd, format)
			if err != nil {
				return err
			}
			store, err := ctx.openStore(ctx.logger(cmd, false))
			if err != nil {
				return err
			}
			defer store.Close()

			episodes := store.Episodes()
			if cmd.Flags().Changed("recent") {
				if recent < 0 {
					return errors.New("--recent must not be negative")
				}
				episodes = store.RecentEpisodes(recent)
			}

			if outFormat == formatJSON {
				return writeJSON(cmd, episodes)
			}
			return writeTable(cmd, episodesTable(episodes))
		},
	}

	addFormatFlag(cmd, &format)
	cmd.Flags().IntVar(&recent, "recent", content.DefaultRecentCount, "Show only the N most recent episodes")
	return cmd
}

func episodesTable(episodes []models.Episode) string {
	rows := make([][]string, 0, len(episodes))
	for _, ep := range episodes {
		duration := ""
		if ep.Media != nil && ep.Media.DurationSeconds != nil {
			duration = strconv.Itoa(int(*ep.Media.DurationSeconds/60+0.5)) + " min"
		}
		rows = append(rows, []string{ep.EpisodeNumber, ep.Date, ep.Title, duration})
	}
	return renderTable("", []string{"No.", "Date", "Title", "Length"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
}

func newFAQCommand(ctx *commandContext) *cobra.Command {
	var format string
	var grouped bool

	cmd := &cobra.Command{
		Use:   "faq",
		Short: "List FAQ entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := resolveFormat(cmd, format)
			if err != nil {
				return err
			}
			store, err := ctx.openStore(ctx.logger(cmd, false))
			if err != nil {
				return err
			}
			defer store.Close()

			if !grouped {
				items := store.FAQ()
				if outFormat == formatJSON {
					return writeJSON(cmd, items)
				}
				return writeTable(cmd, faqTable("", items, true))
			}

			groups := store.FAQByCategory()
			if outFormat == formatJSON {
				return writeJSON(cmd, groups)
			}
			tables := make([]string, 0, len(groups))
			for _, group := range groups {
				title := fmt.Sprintf("%s (%d)", group.Category, len(group.Items))
				tables = append(tables, faqTable(title, group.Items, false))
			}
			return writeTable(cmd, strings.Join(tables, "\n\n"))
		},
	}

	addFormatFlag(cmd, &format)
	cmd.Flags().BoolVar(&grouped, "grouped", false, "Group entries by category")
	return cmd
}

func faqTable(title string, items []models.FAQItem, withCategory bool) string {
	headers := []string{"ID", "Question"}
	if withCategory {
		headers = []string{"ID", "Category", "Question"}
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		if withCategory {
			category := string(item.Category)
			if category == "" {
				category = "-"
			}
			rows = append(rows, []string{strconv.Itoa(item.ID), category, item.Question})
			continue
		}
		rows = append(rows, []string{strconv.Itoa(item.ID), item.Question})
	}
	return renderTable(title, headers, rows, []columnAlignment{alignRight})
}

func newAboutCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "about",
		Short: "List about-page sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := resolveFormat(cmd, format)
			if err != nil {
				return err
			}
			store, err := ctx.openStore(ctx.logger(cmd, false))
			if err != nil {
				return err
			}
			defer store.Close()

			sections := store.About()
			if outFormat == formatJSON {
				return writeJSON(cmd, sections)
			}

			rows := make([][]string, 0, len(sections))
			for _, section := range sections {
				rows = append(rows, []string{section.ID, string(section.Type), section.Title})
			}
			return writeTable(cmd, renderTable("", []string{"ID", "Type", "Title"}, rows, nil))
		},
	}

	addFormatFlag(cmd, &format)
	return cmd
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the content tables load and are consistent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ctx.contentOptions()
			if err != nil {
				return err
			}
			snap, err := content.Load(opts.Dir, opts.AudioRoot, ctx.logger(cmd, false))
			if err != nil {
				return err
			}

			missing := 0
			for _, ep := range snap.Episodes {
				if ep.Audio != "" && ep.Media == nil {
					missing++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ok: %d episodes, %d faq items, %d about sections\n", len(snap.Episodes), len(snap.FAQ), len(snap.About))
			if missing > 0 && opts.AudioRoot != "" {
				fmt.Fprintf(out, "warning: %d episodes reference audio that could not be read\n", missing)
			}
			return nil
		},
	}
}

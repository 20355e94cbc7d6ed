package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dpshade/pocket-madlibs/internal/catalog"
	"github.com/dpshade/pocket-madlibs/internal/clipboard"
	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
	"github.com/dpshade/pocket-madlibs/internal/renderer"
	"github.com/dpshade/pocket-madlibs/internal/server"
	"github.com/dpshade/pocket-madlibs/internal/ui"
	"github.com/dpshade/pocket-madlibs/internal/validation"
)

func (c *CLI) listCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stories and whether you have finished them",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printSummaries(c.service.ListTemplates(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	return cmd
}

func (c *CLI) searchCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search stories by name, description or id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := c.service.SearchTemplates(strings.Join(args, " "))
			if len(results) == 0 && format != "json" {
				fmt.Fprintln(c.out, "No stories found")
				return nil
			}
			return c.printSummaries(results, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	return cmd
}

// printSummaries writes template summaries as a table or JSON
func (c *CLI) printSummaries(summaries []models.TemplateSummary, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	case "", "table":
		tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tWORDS\tSTATUS")
		for _, s := range summaries {
			status := ""
			if s.Completed {
				status = "✓ Done"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.Name, len(s.Words), status)
		}
		return tw.Flush()
	default:
		return apperrors.NewAppError(apperrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown format %q (want table or json)", format))
	}
}

func (c *CLI) showCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a story's blanks and your current answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := c.service.NewEntry(args[0])
			if err != nil {
				return err
			}
			t := ctrl.Template()

			switch format {
			case "text":
			case "template":
				data, err := catalog.SerializeTemplateFile(t)
				if err != nil {
					return err
				}
				_, err = c.out.Write(data)
				return err
			case "json":
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"template": t,
					"answers":  ctrl.Answers(),
					"state":    ctrl.State().String(),
				})
			default:
				return apperrors.NewAppError(apperrors.ErrCodeInvalidInput,
					fmt.Sprintf("unknown format %q (use text, json or template)", format))
			}

			fmt.Fprintf(c.out, "%s (%s)\n", t.Name, t.ID)
			if t.Description != "" {
				fmt.Fprintf(c.out, "%s\n", t.Description)
			}
			fmt.Fprintf(c.out, "Status: %s\n\n", ctrl.State())

			tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SLOT\tLABEL\tEXAMPLE\tANSWER")
			for _, w := range t.Words {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", w.ID, w.Label, w.Example, ctrl.Answer(w.ID))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or template (frontmatter file for the templates dir)")
	return cmd
}

func (c *CLI) playCommand() *cobra.Command {
	var words []string
	var interactive bool
	cmd := &cobra.Command{
		Use:   "play <id>",
		Short: "Fill in the blanks for a story",
		Long: `Fill in the blanks for a story and save them once every blank has a word.

Previously saved answers are the starting point; --word replaces single
answers. With --interactive you are asked for each blank still empty.

Example:
  pocket-madlibs play snowman --word clothing1=scarf --word vegetable1=carrot
  pocket-madlibs play reindeer-games -i`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := c.service.NewEntry(args[0])
			if err != nil {
				return err
			}
			t := ctrl.Template()

			given := make(models.AnswerSet, len(words))
			for _, pair := range words {
				slotID, value, ok := strings.Cut(pair, "=")
				if !ok {
					return apperrors.NewAppError(apperrors.ErrCodeInvalidInput,
						fmt.Sprintf("invalid word %q (expected slot=value)", pair))
				}
				given[slotID] = value
			}
			if result := validation.ValidateAnswers(t, given); !result.Valid {
				return result.ToAppError().WithContext("blanks", t.SlotIDs())
			}
			for slotID, value := range given {
				ctrl.SetAnswer(slotID, value)
			}

			if interactive {
				for _, w := range ctrl.Missing() {
					value, err := c.ask(w)
					if err != nil {
						return err
					}
					if err := validation.ValidateAnswer(value); err != nil {
						return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid answer for "+w.Label)
					}
					ctrl.SetAnswer(w.ID, value)
				}
			}

			if err := ctrl.Submit(); err != nil {
				if apperrors.IsCode(err, apperrors.ErrCodeValidation) {
					fmt.Fprintln(c.out, "Still missing:")
					for _, w := range ctrl.Missing() {
						fmt.Fprintf(c.out, "  %s\t%s\n", w.ID, w.Label)
					}
				}
				return err
			}

			fmt.Fprintf(c.out, "Saved! Read it with: pocket-madlibs read %s\n", t.ID)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&words, "word", "w", nil, "answer as slot=value (repeatable)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for each empty blank")
	return cmd
}

// ask prompts for one blank on the command input
func (c *CLI) ask(w models.WordSlot) (string, error) {
	prompt := w.Label
	if w.Example != "" {
		prompt += fmt.Sprintf(" (e.g. %s)", w.Example)
	}
	fmt.Fprintf(c.out, "%s: ", prompt)

	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (c *CLI) readCommand() *cobra.Command {
	var format string
	var copyStory bool
	cmd := &cobra.Command{
		Use:   "read <id>",
		Short: "Read a finished story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			story, err := c.service.Story(args[0])
			if err != nil {
				if apperrors.IsCode(err, apperrors.ErrCodeIncompleteAnswers) {
					appErr := apperrors.GetAppError(err)
					appErr.Message += fmt.Sprintf(" (fill it in first with: pocket-madlibs play %s -i)", args[0])
					return appErr
				}
				return err
			}

			out, err := renderer.Format(story, format)
			if err != nil {
				return err
			}
			fmt.Fprint(c.out, out)

			if copyStory {
				status, err := clipboard.CopyWithStatus(story.PlainText())
				if err != nil {
					return err
				}
				fmt.Fprintln(c.err, status)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", renderer.FormatText,
		"output format: "+strings.Join(renderer.Formats, ", "))
	cmd.Flags().BoolVarP(&copyStory, "copy", "c", false, "copy the story text to the clipboard")
	return cmd
}

func (c *CLI) resetCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset <id>",
		Short: "Clear your answers for a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.service.GetTemplate(args[0])
			if err != nil {
				return err
			}

			confirmed := yes
			if !confirmed {
				confirmed, err = c.confirm(fmt.Sprintf("Clear all answers for %q? This cannot be undone.", t.Name))
				if err != nil {
					return err
				}
			}
			if !confirmed {
				fmt.Fprintln(c.out, "Reset cancelled")
				return nil
			}

			if err := c.service.Reset(t.ID, true); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Answers for %q cleared\n", t.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Check template files for undeclared or unused blanks",
		Long: `Validate a JSON dataset, a .md template or a directory of templates.

Without a path the built-in stories and the configured template sources are
checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reports []catalog.Report
			if len(args) == 1 {
				r, err := catalog.Lint(args[0])
				if err != nil {
					return err
				}
				reports = r
			} else {
				reports = catalog.LintBuiltin()
				for _, path := range []string{c.cfg.TemplatesFile, c.cfg.TemplatesDir} {
					if path == "" {
						continue
					}
					if _, err := os.Stat(path); os.IsNotExist(err) {
						continue
					}
					r, err := catalog.Lint(path)
					if err != nil {
						return err
					}
					reports = append(reports, r...)
				}
			}
			return PrintReports(c.out, reports)
		},
	}
}

// PrintReports writes lint results and returns an InvalidTemplate error
// when any report has errors
func PrintReports(w io.Writer, reports []catalog.Report) error {
	for _, r := range reports {
		name := r.TemplateID
		if name == "" {
			name = "(no id)"
		}
		if r.Source != "" {
			name += " [" + r.Source + "]"
		}
		if r.OK() && len(r.Warnings) == 0 {
			fmt.Fprintf(w, "✓ %s\n", name)
			continue
		}
		mark := "⚠"
		if !r.OK() {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s\n", mark, name)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "    error: %s\n", e)
		}
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "    warning: %s\n", warning)
		}
	}

	errs, warnings := catalog.Summarize(reports)
	fmt.Fprintf(w, "\n%d templates, %d errors, %d warnings\n", len(reports), errs, warnings)
	if errs > 0 {
		return apperrors.NewAppError(apperrors.ErrCodeInvalidTemplate,
			fmt.Sprintf("%d template errors found", errs))
	}
	return nil
}

func (c *CLI) serveCommand() *cobra.Command {
	var port int
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Play in the browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = c.cfg.Port
			}
			srv, err := server.New(c.service, c.logger, server.WithPort(port), server.WithWatch(watch))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(c.out, "Mad Libs running at http://localhost:%d (Ctrl+C to stop)\n", port)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on (default from config)")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload templates when files change")
	return cmd
}

func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI()
		},
	}
}

func (c *CLI) runTUI() error {
	return ui.Run(c.service, c.logger)
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.out, "pocket-madlibs version %s\n", Version)
		},
	}
}

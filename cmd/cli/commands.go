package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"mutafriches/internal/bootstrap"
	"mutafriches/internal/evaluation/export"
	"mutafriches/internal/mutability"
	"mutafriches/internal/parcel"
)

// =============================================================================
// ENRICH COMMAND
// =============================================================================

func enrichCommand() *cli.Command {
	return &cli.Command{
		Name:  "enrich",
		Usage: "Collect every known characteristic of a parcel",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "identifier",
				Aliases:  []string{"i"},
				Usage:    "Cadastral parcel identifier (14 characters)",
				Required: true,
			},
		},
		Action: runEnrich,
	}
}

func runEnrich(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, app *bootstrap.App) error {
		res, err := app.Enrichment.Enrich(ctx, c.String("identifier"))
		if err != nil {
			return fmt.Errorf("enrichment failed: %w", err)
		}
		fmt.Fprintf(c.App.ErrWriter, "status %s: %d sources used, %d failed\n",
			res.Status, len(res.Provenance.SourcesUsed), len(res.Provenance.SourcesFailed))
		return printJSON(c.App.Writer, res)
	})
}

// =============================================================================
// EVALUATE COMMAND
// =============================================================================

func evaluateCommand() *cli.Command {
	return &cli.Command{
		Name:  "evaluate",
		Usage: "Score a parcel for the seven usages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "identifier",
				Aliases: []string{"i"},
				Usage:   "Enrich this parcel first, then score it",
			},
			&cli.StringFlag{
				Name:    "parcel",
				Aliases: []string{"p"},
				Usage:   "Path to an enriched parcel JSON file (- for stdin)",
			},
			&cli.StringFlag{
				Name:    "answers",
				Aliases: []string{"a"},
				Usage:   "Path to a JSON file with the site visit answers",
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Write the evaluation as an XLSX workbook to this path",
			},
		},
		Action: runEvaluate,
	}
}

func runEvaluate(c *cli.Context) error {
	identifier, parcelPath := c.String("identifier"), c.String("parcel")
	if (identifier == "") == (parcelPath == "") {
		return errors.New("exactly one of --identifier or --parcel is required")
	}

	var answers parcel.UserAnswers
	if path := c.String("answers"); path != "" {
		if err := readJSON(path, &answers); err != nil {
			return err
		}
	}

	return withApp(c, func(ctx context.Context, app *bootstrap.App) error {
		var (
			id     uuid.UUID
			output any
		)
		if identifier != "" {
			res, err := app.Evaluation.EvaluateIdentifier(ctx, identifier, answers)
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}
			id, output = res.Evaluation.ID, res
		} else {
			var p parcel.Parcel
			if err := readJSON(parcelPath, &p); err != nil {
				return err
			}
			res, err := app.Evaluation.Evaluate(ctx, p, answers)
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}
			id, output = res.ID, res
		}

		if path := c.String("export"); path != "" {
			if err := exportEvaluation(ctx, app, id, path); err != nil {
				return err
			}
			fmt.Fprintf(c.App.ErrWriter, "workbook written to %s\n", path)
		}
		return printJSON(c.App.Writer, output)
	})
}

func exportEvaluation(ctx context.Context, app *bootstrap.App, id uuid.UUID, path string) error {
	rec, err := app.Evaluation.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load evaluation: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(f, rec); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// =============================================================================
// MATRIX COMMAND
// =============================================================================

func matrixCommand() *cli.Command {
	return &cli.Command{
		Name:  "matrix",
		Usage: "Print the scoring matrix",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
		},
		Action: runMatrix,
	}
}

// matrixRow is one rule line: an enum key or a bucket of one criterion.
type matrixRow struct {
	Criterion parcel.Criterion   `json:"criterion"`
	Weight    float64            `json:"weight"`
	Case      string             `json:"case"`
	Scores    map[string]float64 `json:"scores"`
}

func runMatrix(c *cli.Context) error {
	rows := matrixRows(mutability.DefaultMatrix())
	switch c.String("format") {
	case "json":
		return printJSON(c.App.Writer, rows)
	case "table":
		return printMatrixTable(c, rows)
	default:
		return fmt.Errorf("unknown format %q", c.String("format"))
	}
}

func matrixRows(m *mutability.Matrix) []matrixRow {
	var rows []matrixRow
	add := func(c parcel.Criterion, w float64, label string, s mutability.Scores) {
		scores := make(map[string]float64, mutability.UsageCount)
		for i, u := range mutability.Usages {
			scores[string(u)] = s[i]
		}
		rows = append(rows, matrixRow{Criterion: c, Weight: w, Case: label, Scores: scores})
	}

	for _, c := range m.Criteria() {
		entry, _ := m.Entry(c)
		switch rule := entry.Rule.(type) {
		case mutability.EnumRule:
			for _, key := range rule.Keys() {
				s, _ := rule.Scores(key)
				add(c, entry.Weight, key, s)
			}
		case mutability.BucketRule:
			for _, b := range rule.Buckets() {
				add(c, entry.Weight, b.Label, b.Scores)
			}
		}
	}
	return rows
}

func printMatrixTable(c *cli.Context, rows []matrixRow) error {
	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "CRITERION\tWEIGHT\tCASE")
	for _, u := range mutability.Usages {
		fmt.Fprintf(tw, "\t%s", u)
	}
	fmt.Fprintln(tw)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s", r.Criterion, strconv.FormatFloat(r.Weight, 'f', -1, 64), r.Case)
		for _, u := range mutability.Usages {
			fmt.Fprintf(tw, "\t%s", strconv.FormatFloat(r.Scores[string(u)], 'f', -1, 64))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ahmed-kaif/hcv-frontend/internal/prediction"
	"github.com/ahmed-kaif/hcv-frontend/internal/views"
)

func runPredict(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	values := make(map[string]*string)
	for _, name := range prediction.RequiredFields {
		values[name] = fs.String(name, "", name+" (required)")
	}
	for _, name := range prediction.OptionalFields {
		values[name] = fs.String(name, "", name)
	}
	values["Sex"] = fs.String("Sex", "M", "Sex, M or F")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := prediction.DefaultForm()
	for name, v := range values {
		if err := form.Set(name, *v); err != nil {
			return err
		}
	}

	rec, err := c.app.Workflow(c.prompt).Submit(ctx, form)
	if err != nil {
		return err
	}
	views.Result(c.stdout, rec)
	return nil
}

func runHistory(ctx context.Context, c *cli, args []string) error {
	wf := c.app.Workflow(c.prompt)
	if err := wf.ListAll(ctx); err != nil {
		return err
	}
	views.History(c.stdout, wf.Predictions())
	return nil
}

func runShow(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}
	rec, err := c.app.Workflow(c.prompt).FetchDetail(ctx, id)
	if err != nil {
		return err
	}
	views.Detail(c.stdout, rec)
	return nil
}

func runDelete(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	list := fs.Bool("list", false, "Show the remaining history afterwards")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}
	wf := c.app.Workflow(c.confirmer(*yes))
	if *list {
		if err := wf.ListAll(ctx); err != nil {
			return err
		}
	}
	if err := wf.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Prediction #%d deleted.\n", id)
	if *list {
		// The deleted record is dropped locally; no second fetch.
		fmt.Fprintln(c.stdout)
		views.History(c.stdout, wf.Predictions())
	}
	return nil
}

func runPrint(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("print", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	out := fs.String("o", "", "Write the report to a file instead of stdout")
	html := fs.Bool("html", false, "Write an HTML report")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}
	rec, err := c.app.Workflow(c.prompt).FetchDetail(ctx, id)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if *html {
		if err := views.ReportHTML(&buf, rec, false); err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
	} else {
		views.Report(&buf, rec)
	}

	if *out == "" {
		_, err := buf.WriteTo(c.stdout)
		return err
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(c.stdout, "Report written to %s\n", *out)
	return nil
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
)

// Step is one parameter the operator seeds before the first deploy.
type Step struct {
	Label string
	// Key is the category/key part of /{env}/beachscore/{key}.
	Key string
	// EnvVar is the variable the services read. The deployed stack sets
	// EnvVar+"_SSM_PARAM" to the parameter path.
	EnvVar   string
	Secret   bool
	Optional bool
	Prompt   string
	Validate func(string) error
}

// maxAttempts bounds re-prompts after a validation failure.
const maxAttempts = 5

var errSkipped = errors.New("parameter skipped by operator")

var openWeatherKeyPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// Inventory returns the ordered parameter list.
func Inventory() []Step {
	validate := validator.New()
	return []Step{
		{
			Label:    "Database URL",
			Key:      "database/url",
			EnvVar:   "DATABASE_URL",
			Secret:   true,
			Prompt:   "Paste the Postgres connection string for the preferences database (postgres://...):",
			Validate: validateDatabaseURL,
		},
		{
			Label:  "OpenWeather API Key",
			Key:    "providers/openweather_api_key",
			EnvVar: "OPENWEATHER_API_KEY",
			Secret: true,
			Prompt: "Paste the OpenWeather One Call API key (32 hex characters):",
			Validate: func(s string) error {
				if !openWeatherKeyPattern.MatchString(s) {
					return errors.New("expected 32 lowercase hex characters")
				}
				return nil
			},
		},
		{
			Label:    "Go-now queue URL (optional)",
			Key:      "queues/go_now_url",
			EnvVar:   "SQS_GO_NOW",
			Optional: true,
			Prompt:   "Paste the SQS queue URL for go-now alerts (or press Enter to skip):",
			Validate: func(s string) error {
				if err := validate.Var(s, "url"); err != nil {
					return errors.New("not a valid URL")
				}
				return nil
			},
		},
	}
}

func validateDatabaseURL(s string) error {
	if !strings.HasPrefix(s, "postgres://") && !strings.HasPrefix(s, "postgresql://") {
		return errors.New("must start with postgres:// or postgresql://")
	}
	cfg, err := pgx.ParseConfig(s)
	if err != nil {
		return fmt.Errorf("unparseable connection string: %w", err)
	}
	if cfg.Database == "" {
		return errors.New("connection string names no database")
	}
	return nil
}

// Runner walks the inventory, prompting on Stdin and reporting on Out.
type Runner struct {
	SSM   *SSMManager
	Steps []Step
	Out   io.Writer
	// SkipOptional skips optional steps without prompting.
	SkipOptional bool

	in *bufio.Scanner
}

func NewRunner(ssmMgr *SSMManager, stdin io.Reader, out io.Writer) *Runner {
	return &Runner{
		SSM:   ssmMgr,
		Steps: Inventory(),
		Out:   out,
		in:    bufio.NewScanner(stdin),
	}
}

// Result records what happened to one step.
type Result struct {
	Label  string
	Path   string
	Action string // written, overwritten, skipped
}

func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(r.Steps))
	for i, step := range r.Steps {
		fmt.Fprintf(r.Out, "\n[%d/%d] %s\n", i+1, len(r.Steps), step.Label)
		res, err := r.process(ctx, step)
		if err != nil {
			return results, fmt.Errorf("step %q failed: %w", step.Label, err)
		}
		results = append(results, res)
	}

	fmt.Fprintln(r.Out, "\nSummary:")
	for _, res := range results {
		fmt.Fprintf(r.Out, "  %-12s %s\n", res.Action, res.Path)
	}
	return results, nil
}

func (r *Runner) process(ctx context.Context, step Step) (Result, error) {
	path := r.SSM.Path(step.Key)
	res := Result{Label: step.Label, Path: path, Action: "skipped"}

	if step.Optional && r.SkipOptional {
		fmt.Fprintln(r.Out, "  Skipped (--skip-optional)")
		return res, nil
	}

	exists, err := r.SSM.Exists(ctx, path)
	if err != nil {
		return res, err
	}
	if exists {
		fmt.Fprintf(r.Out, "  Parameter already exists: %s\n  [s]kip or [o]verwrite? ", path)
		answer, err := r.readLine()
		if err != nil {
			return res, err
		}
		if !strings.HasPrefix(strings.ToLower(answer), "o") {
			fmt.Fprintln(r.Out, "  Skipped.")
			return res, nil
		}
	}

	value, err := r.promptValue(step)
	if errors.Is(err, errSkipped) {
		fmt.Fprintln(r.Out, "  Skipped.")
		return res, nil
	}
	if err != nil {
		return res, err
	}

	if err := r.SSM.Put(ctx, path, value, step.Secret, exists); err != nil {
		return res, err
	}
	res.Action = "written"
	if exists {
		res.Action = "overwritten"
	}
	fmt.Fprintf(r.Out, "  Stored: %s\n", path)
	return res, nil
}

func (r *Runner) promptValue(step Step) (string, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprintf(r.Out, "  %s\n  > ", step.Prompt)
		value, err := r.readLine()
		if err != nil {
			return "", err
		}
		if value == "" {
			if step.Optional {
				return "", errSkipped
			}
			fmt.Fprintln(r.Out, "  A value is required.")
			continue
		}
		if step.Validate != nil {
			if err := step.Validate(value); err != nil {
				fmt.Fprintf(r.Out, "  Invalid: %v\n", err)
				continue
			}
		}
		return value, nil
	}
	return "", fmt.Errorf("no valid value after %d attempts", maxAttempts)
}

func (r *Runner) readLine() (string, error) {
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(r.in.Text()), nil
}

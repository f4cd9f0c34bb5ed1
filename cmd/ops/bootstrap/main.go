// Package main implements the bootstrap CLI that seeds the SSM parameters
// BeachScore reads at startup.
//
// Usage:
//
//	go run ./cmd/ops/bootstrap --env=dev
//	go run ./cmd/ops/bootstrap --env=dev --export-env
//	go run ./cmd/ops/bootstrap --env=prod --profile=beachscore-prod --region=us-east-1
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

var validEnvironments = map[string]bool{
	"dev":     true,
	"staging": true,
	"prod":    true,
}

// session is the verified AWS identity the tool writes with.
type session struct {
	Env       string
	Region    string
	Profile   string
	AccountID string
	CallerARN string
	AWS       aws.Config
}

func main() {
	envFlag := flag.String("env", "", "Target environment (dev/staging/prod) [required]")
	profileFlag := flag.String("profile", "", "AWS CLI profile (default credential chain when empty)")
	regionFlag := flag.String("region", "us-east-1", "AWS region")
	endpointFlag := flag.String("endpoint", "", "SSM endpoint override, e.g. http://localhost:4566")
	skipOptional := flag.Bool("skip-optional", false, "Skip optional parameters without prompting")
	exportEnv := flag.Bool("export-env", false, "After seeding, write the parameters to a dotenv file")
	exportPath := flag.String("export-env-path", ".env", "Path of the exported dotenv file")
	flag.Parse()

	if err := checkEnvironment(*envFlag); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sess, err := newSession(ctx, *envFlag, *profileFlag, *regionFlag)
	if err != nil {
		logger.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	logger.Info("AWS identity verified", "account_id", sess.AccountID, "arn", sess.CallerARN, "region", sess.Region)

	stdin := bufio.NewReader(os.Stdin)
	if sess.Env == "prod" && !confirmProduction(stdin, os.Stderr, sess) {
		fmt.Fprintln(os.Stderr, "Aborted. No changes were made.")
		return
	}
	printBanner(os.Stderr, sess)

	client := ssm.NewFromConfig(sess.AWS, func(o *ssm.Options) {
		if *endpointFlag != "" {
			o.BaseEndpoint = aws.String(*endpointFlag)
		}
	})
	mgr := NewSSMManager(client, sess.Env, logger)

	runner := NewRunner(mgr, stdin, os.Stderr)
	runner.SkipOptional = *skipOptional
	if _, err := runner.Run(ctx); err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	if *exportEnv {
		vars, err := ExportEnv(ctx, mgr, runner.Steps, *exportPath)
		if err != nil {
			logger.Error("failed to export dotenv file", "error", err)
			os.Exit(1)
		}
		logger.Info("dotenv file exported", "path", *exportPath, "variables", len(vars))
	}
}

func checkEnvironment(env string) error {
	if env == "" {
		return fmt.Errorf("--env is required")
	}
	if !validEnvironments[env] {
		return fmt.Errorf("invalid environment %q (must be dev, staging, or prod)", env)
	}
	return nil
}

// newSession loads AWS credentials and confirms them with STS before any
// parameter is touched.
func newSession(ctx context.Context, env, profile, region string) (*session, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	idCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	identity, err := sts.NewFromConfig(cfg).GetCallerIdentity(idCtx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("verifying AWS identity (profile %q, region %q): %w", profile, region, err)
	}

	return &session{
		Env:       env,
		Region:    region,
		Profile:   profile,
		AccountID: aws.ToString(identity.Account),
		CallerARN: aws.ToString(identity.Arn),
		AWS:       cfg,
	}, nil
}

// confirmProduction returns true only when the operator types "yes".
func confirmProduction(in io.Reader, out io.Writer, s *session) bool {
	fmt.Fprintln(out, "\nWARNING: you are targeting the PRODUCTION environment")
	fmt.Fprintf(out, "  Account: %s\n  Region:  %s\n  ARN:     %s\n", s.AccountID, s.Region, s.CallerARN)
	fmt.Fprint(out, "Type 'yes' to continue: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes")
}

func printBanner(out io.Writer, s *session) {
	fmt.Fprintln(out, "\n------------------------------------------------------------")
	fmt.Fprintln(out, "  BeachScore Bootstrap")
	fmt.Fprintf(out, "  Environment:  %s\n", s.Env)
	fmt.Fprintf(out, "  AWS Account:  %s\n", s.AccountID)
	fmt.Fprintf(out, "  AWS Region:   %s\n", s.Region)
	if s.Profile != "" {
		fmt.Fprintf(out, "  Profile:      %s\n", s.Profile)
	}
	fmt.Fprintf(out, "  SSM Prefix:   /%s/beachscore/\n", s.Env)
	fmt.Fprintln(out, "------------------------------------------------------------")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gruntwork-io/go-commons/logging"
	"github.com/gruntwork-io/publish/credentials"
	"github.com/gruntwork-io/publish/source"
	_ "github.com/gruntwork-io/publish/source/github" // Register GitHub source
	_ "github.com/gruntwork-io/publish/source/gitlab" // Register GitLab source
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// This variable is set at build time using -ldflags parameters. For more info, see:
// http://stackoverflow.com/a/11355611/483528
var VERSION string

type PublishOptions struct {
	RepoOwnerAndName string
	RepoDir          string
	OutPath          string
	SourceType       string // "github" or "gitlab"
	Profile          string
	ConfigFile       string
	GithubToken      string
	GitlabToken      string
	ApiUrl           string
	ChecksumAlgo     string
	TrimVersion      bool
	DryRun           bool
	WithProgress     bool

	// Project logger
	Logger *logrus.Entry
}

const optionRepo = "repo"
const optionRepoDir = "repo-dir"
const optionOutPath = "out-path"
const optionSource = "source"
const optionProfile = "profile"
const optionConfig = "config"
const optionGithubToken = "github-oauth-token"
const optionGitlabToken = "gitlab-token"
const optionApiUrl = "api-url"
const optionChecksumAlgo = "checksum-algo"
const optionTrimVersion = "trim-version"
const optionDryRun = "dry-run"
const optionWithProgress = "progress"
const optionLogLevel = "log-level"

const envVarRepo = "SOURCE_GITHUB_REPO_OWNER_AND_NAME"
const envVarRepoDir = "MAIN_REPO_DIR"
const envVarOutPath = "OUT_PATH"
const envVarSource = "PUBLISH_SOURCE"
const envVarProfile = "PUBLISH_PROFILE"
const envVarConfig = "PUBLISH_CONFIG_FILE"
const envVarGithubToken = "GITHUB_OAUTH_TOKEN"
const envVarGitlabToken = "GITLAB_TOKEN"

// Create the Publish CLI App
func CreatePublishCli(version string, writer io.Writer, errwriter io.Writer) *cli.App {
	app := &cli.App{
		Name:      "publish",
		Usage:     "publish attaches the *.gz build artifacts in an output directory to the GitHub or GitLab release tagged with the contents of a repo's VERSION file.",
		UsageText: "publish [global options]\n   (All required options can also be set through the SOURCE_GITHUB_REPO_OWNER_AND_NAME, MAIN_REPO_DIR and OUT_PATH env vars.)",
		Authors:   []*cli.Author{{Name: "Gruntwork", Email: "www.gruntwork.io"}},
		Version:   version,
		Writer:    writer,
		ErrWriter: errwriter,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    optionRepo,
				Usage:   "Required. The repo to publish to, as <owner>/<name>.",
				EnvVars: []string{envVarRepo},
			},
			&cli.StringFlag{
				Name:    optionRepoDir,
				Usage:   "Required. Path to the checked-out repo. Its VERSION file names the release tag.",
				EnvVars: []string{envVarRepoDir},
			},
			&cli.StringFlag{
				Name:    optionOutPath,
				Usage:   "Required. Path to the directory holding the *.gz build artifacts to upload.",
				EnvVars: []string{envVarOutPath},
			},
			&cli.StringFlag{
				Name:    optionSource,
				Aliases: []string{"s"},
				Value:   string(source.TypeGitHub),
				Usage:   "The source type to publish to: \"github\" or \"gitlab\".",
				EnvVars: []string{envVarSource},
			},
			&cli.StringFlag{
				Name:    optionProfile,
				Value:   credentials.DefaultProfile,
				Usage:   "The credentials profile to use.",
				EnvVars: []string{envVarProfile},
			},
			&cli.StringFlag{
				Name:    optionConfig,
				Usage:   "Path to a .ini or .yaml credentials file holding one section per profile.\n\tIf left blank, only the token flags/env vars are used.",
				EnvVars: []string{envVarConfig},
			},
			&cli.StringFlag{
				Name:    optionGithubToken,
				Usage:   "A GitHub Personal Access Token with write access to the repo's releases. Populate by setting env var",
				EnvVars: []string{envVarGithubToken},
			},
			&cli.StringFlag{
				Name:    optionGitlabToken,
				Usage:   "A GitLab Personal Access Token with write access to the repo's releases.",
				EnvVars: []string{envVarGitlabToken},
			},
			&cli.StringFlag{
				Name:  optionApiUrl,
				Usage: "The base URL of a GitHub Enterprise or self-hosted GitLab instance. Overrides the profile's api_url.",
			},
			&cli.StringFlag{
				Name:  optionChecksumAlgo,
				Usage: "If set, log the checksum of every artifact before uploading it. Acceptable values\n\tare \"sha256\" and \"sha512\".",
			},
			&cli.BoolFlag{
				Name:  optionTrimVersion,
				Usage: "Strip surrounding whitespace from the VERSION file contents. By default they are used verbatim.",
			},
			&cli.BoolFlag{
				Name:  optionDryRun,
				Usage: "Resolve the release and list the artifacts, but do not upload anything.",
			},
			&cli.BoolFlag{
				Name:  optionWithProgress,
				Usage: "Display progress on file uploads, where the source supports it",
			},
			&cli.StringFlag{
				Name:  optionLogLevel,
				Value: DEFAULT_LOG_LEVEL.String(),
				Usage: "The logging level of the command. Acceptable values\n\tare \"trace\", \"debug\", \"info\", \"warn\", \"error\", \"fatal\" and \"panic\".",
			},
		},
		Before: initLogger,
		Action: runPublishWrapper,
	}

	return app
}

func main() {
	// The flags read their env vars while parsing, so .env has to be in the environment before app.Run
	if err := credentials.LoadDotEnv(""); err != nil {
		GetProjectLoggerWithWriter(os.Stderr).Warnf("Ignoring %s: %s", credentials.DotEnvFile, err)
	}

	app := CreatePublishCli(VERSION, os.Stdout, os.Stderr)

	// Run the definition of App.Action
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// initLogger initializes the Logger before any command is actually executed. This function will handle all the setup
// code, such as setting up the logger with the appropriate log level.
func initLogger(cliContext *cli.Context) error {
	// Set logging level
	logLevel := cliContext.String(optionLogLevel)
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("Error: %s", err)
	}
	logging.SetGlobalLogLevel(level)
	return nil
}

// We just want to call runPublish(), but a failure must end the process with a non-zero code and a stack trace, so
// call a wrapper function instead.
func runPublishWrapper(c *cli.Context) error {
	if err := runPublishAndLogErrors(c); err != nil {
		os.Exit(1)
	}
	return nil
}

// runPublishAndLogErrors keeps progress on the app's writer and sends failures to its error writer
func runPublishAndLogErrors(c *cli.Context) error {
	// initialize the logger
	logger := GetProjectLoggerWithWriter(c.App.Writer)
	err := runPublish(c, logger)
	if err != nil {
		logError(GetProjectLoggerWithWriter(c.App.ErrWriter), err)
	}
	return err
}

// logError prints the friendly message for coded errors, followed by the stack trace
func logError(logger *logrus.Entry, err error) {
	var pubErr *publishError
	if errors.As(err, &pubErr) {
		if message := getErrorMessage(pubErr.errorCode, pubErr.details); message != "" {
			logger.Error(message)
		}
		logger.Errorf("%s\n", pubErr.stackTrace())
		return
	}
	logger.Errorf("%s\n", err)
}

// Run the publish program
func runPublish(c *cli.Context, logger *logrus.Entry) error {
	options := parseOptions(c, logger)
	if err := validateOptions(options); err != nil {
		return err
	}

	sourceType, _ := source.ParseSourceType(options.SourceType)
	token := options.GithubToken
	if sourceType == source.TypeGitLab {
		token = options.GitlabToken
	}

	factory, err := credentials.NewFactory(options.ConfigFile, credentials.Overrides{
		Token:  token,
		ApiUrl: options.ApiUrl,
	})
	if err != nil {
		return wrapErrorWithCode(configurationError, err)
	}

	return publishRelease(context.Background(), options, factory, source.NewSource)
}

func parseOptions(c *cli.Context, logger *logrus.Entry) PublishOptions {
	return PublishOptions{
		RepoOwnerAndName: c.String(optionRepo),
		RepoDir:          c.String(optionRepoDir),
		OutPath:          c.String(optionOutPath),
		SourceType:       c.String(optionSource),
		Profile:          c.String(optionProfile),
		ConfigFile:       c.String(optionConfig),
		GithubToken:      c.String(optionGithubToken),
		GitlabToken:      c.String(optionGitlabToken),
		ApiUrl:           c.String(optionApiUrl),
		ChecksumAlgo:     c.String(optionChecksumAlgo),
		TrimVersion:      c.Bool(optionTrimVersion),
		DryRun:           c.Bool(optionDryRun),
		WithProgress:     c.Bool(optionWithProgress),
		Logger:           logger,
	}
}

func validateOptions(options PublishOptions) error {
	if options.RepoOwnerAndName == "" {
		return newError(configurationError, fmt.Sprintf("The --%s flag (or the %s env var) is required. Run \"publish --help\" for full usage info.", optionRepo, envVarRepo))
	}

	if options.RepoDir == "" {
		return newError(configurationError, fmt.Sprintf("The --%s flag (or the %s env var) is required. Run \"publish --help\" for full usage info.", optionRepoDir, envVarRepoDir))
	}

	if options.OutPath == "" {
		return newError(configurationError, fmt.Sprintf("The --%s flag (or the %s env var) is required. Run \"publish --help\" for full usage info.", optionOutPath, envVarOutPath))
	}

	if _, err := source.ParseSourceType(options.SourceType); err != nil {
		return newError(configurationError, fmt.Sprintf("Invalid --%s value: %s. Valid values are: github, gitlab", optionSource, options.SourceType))
	}

	if options.ChecksumAlgo != "" {
		if _, pubErr := getHasher(options.ChecksumAlgo); pubErr != nil {
			return pubErr
		}
	}

	return nil
}

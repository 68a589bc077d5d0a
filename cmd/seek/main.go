package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinylittleshell/seek/internal/agent"
	"github.com/atinylittleshell/seek/internal/appupdate"
	"github.com/atinylittleshell/seek/internal/config"
	"github.com/atinylittleshell/seek/internal/core"
	"github.com/atinylittleshell/seek/internal/deepseek"
	"github.com/atinylittleshell/seek/internal/filesystem"
	"github.com/atinylittleshell/seek/internal/history"
	"github.com/atinylittleshell/seek/internal/repl"
)

var BUILD_VERSION = "dev"

var resumeFlag = flag.Bool("resume", false, "resume the most recent conversation")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

const helpText = `seek - An AI coding agent in your terminal

USAGE:
  seek [options]

MODES:
  seek                    Start a new conversation
  seek -resume            Continue the most recent conversation

CONFIGURATION:
  Settings are read from ~/.seekrc.yaml. The API token is taken from the
  DEEPSEEK_TOKEN environment variable, or from ~/.seek/token.

OPTIONS:
`

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Print(helpText)
		flag.PrintDefaults()
		return
	}

	// Load the configuration before the logger so the log level is known
	configResult, err := config.NewLoader(zap.NewNop()).LoadDefaultConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := configResult.Config

	// Initialize the logger
	logger, err := initializeLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new seek session --------", zap.Any("args", os.Args))

	for _, configErr := range configResult.Errors {
		logger.Warn("configuration problem", zap.Error(configErr))
		fmt.Fprintf(os.Stderr, "configuration problem: %v\n", configErr)
	}

	// Initialize the history manager
	historyManager, err := history.NewHistoryManager(core.HistoryFile())
	if err != nil {
		panic("failed to initialize history manager")
	}

	token, err := config.ResolveToken()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if lastVersion := appupdate.GetLastUsedVersion(); lastVersion != BUILD_VERSION {
		logger.Info("version changed since last run",
			zap.String("last", lastVersion),
			zap.String("current", BUILD_VERSION),
		)
		if err := appupdate.UpdateVersionMarker(BUILD_VERSION); err != nil {
			logger.Warn("failed to update version marker", zap.Error(err))
		}
	}

	// Check for updates in background
	appupdate.HandleSelfUpdate(
		BUILD_VERSION,
		logger,
		filesystem.DefaultFileSystem{},
		appupdate.DefaultUpdater{},
	)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		if notice := appupdate.NotificationMessage(BUILD_VERSION, filesystem.DefaultFileSystem{}); notice != "" {
			fmt.Println(notice)
		}
	}

	if err := run(cfg, token, historyManager, logger); err != nil {
		logger.Error("unhandled error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "seek: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, token string, historyManager *history.HistoryManager, logger *zap.Logger) error {
	ctx := context.Background()

	client := deepseek.NewClient(cfg.BaseURL, token, logger)

	chatID, parentID, err := openConversation(ctx, client, historyManager, logger)
	if err != nil {
		return err
	}

	r := repl.NewREPL(repl.Options{
		Client:   client,
		Registry: agent.DefaultRegistry(logger),
		Config:   cfg,
		History:  historyManager,
		Logger:   logger,
		ChatID:   chatID,
		ParentID: parentID,
	})

	return r.Run(ctx)
}

// openConversation creates a fresh server-side conversation, or with -resume
// looks up the most recent one from history and re-reads its last message id
// so the new session continues the old thread.
func openConversation(
	ctx context.Context,
	client *deepseek.Client,
	historyManager *history.HistoryManager,
	logger *zap.Logger,
) (string, *int64, error) {
	if *resumeFlag {
		chatID, err := historyManager.LatestChatID()
		if err != nil {
			return "", nil, err
		}

		parentID, err := client.ResumeChat(ctx, chatID)
		if err != nil {
			return "", nil, err
		}

		logger.Info("resuming conversation", zap.String("chatId", chatID))
		return chatID, parentID, nil
	}

	chatID, err := client.CreateChat(ctx)
	if err != nil {
		return "", nil, err
	}
	return chatID, nil, nil
}

func initializeLogger(cfg *config.Config) (*zap.Logger, error) {
	logLevel, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	// Logs only go to file to avoid interfering with the interactive prompt.
	// Use `tail -f ~/.seek/seek.log` to monitor logs in real-time.

	return loggerConfig.Build()
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"

	"github.com/sharpsmith/sharpmerge-cli/app"
	"github.com/sharpsmith/sharpmerge-cli/app/cli"
	"github.com/sharpsmith/sharpmerge-cli/app/generate"
	"github.com/sharpsmith/sharpmerge-cli/app/merge"
	"github.com/sharpsmith/sharpmerge-cli/app/scaffold"
	"github.com/sharpsmith/sharpmerge-cli/app/screens"
	config "github.com/sharpsmith/sharpmerge-cli/internal"
)

// Define Version (will be set via linker flags during build)
var Version = "v0.3.0"

// ProgramModel wraps app.Model so we can hold Update logic in one place.
type ProgramModel struct {
	M app.Model
}

// staticRegistryChecker implements cli.CommandRegistryChecker over the fixed
// command set; there is no dynamic registry to consult.
type staticRegistryChecker struct{}

var knownCommands = map[string]bool{
	"merge":       true,
	"rollback":    true,
	"clean":       true,
	"generate":    true,
	"version":     true,
	"help":        true,
	"config":      true,
	"config get":  true,
	"config set":  true,
	"config list": true,
}

func (staticRegistryChecker) CommandExists(name string) bool { return knownCommands[name] }

func (pm ProgramModel) Init() tea.Cmd { return nil }

// Update routes messages to the active screen.
func (pm ProgramModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMsg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.M.TerminalWidth = typedMsg.Width
		pm.M.TerminalHeight = typedMsg.Height
		if pm.M.DiffReady {
			pm.M.DiffViewport.Width = typedMsg.Width - 6
			height := typedMsg.Height - 8
			if height < 5 {
				height = 5
			}
			pm.M.DiffViewport.Height = height
		}
		return pm, nil

	case tea.KeyMsg:
		switch pm.M.CurrentScreen {
		case app.ScreenReview:
			updatedM, cmd := screens.UpdateScreenReview(pm.M, typedMsg)
			pm.M = updatedM
			return pm, cmd
		case app.ScreenDiff:
			updatedM, cmd := screens.UpdateScreenDiff(pm.M, typedMsg)
			pm.M = updatedM
			return pm, cmd
		case app.ScreenSummary:
			updatedM, cmd := screens.UpdateScreenSummary(pm.M, typedMsg)
			pm.M = updatedM
			return pm, cmd
		default:
			return pm, nil
		}
	}
	return pm, nil
}

// View selects which screen's View function to call based on CurrentScreen.
func (pm ProgramModel) View() string {
	switch pm.M.CurrentScreen {
	case app.ScreenReview:
		return screens.ViewReviewScreen(pm.M)
	case app.ScreenDiff:
		return screens.ViewDiffScreen(pm.M)
	case app.ScreenSummary:
		return screens.ViewSummaryScreen(pm.M)
	}
	return ""
}

func main() {
	args := os.Args[1:]

	parsedArgs := cli.ParseCommandLineArgs(args, staticRegistryChecker{})
	if len(parsedArgs.Errors) > 0 {
		fmt.Println("Error parsing arguments:")
		for _, err := range parsedArgs.Errors {
			fmt.Printf("  - %v\n", err)
		}
		os.Exit(1)
	}

	cli.SetVerboseEnabled(parsedArgs.Bool("verbose", "v"))
	cli.SetDebugEnabled(parsedArgs.Bool("debug", ""))

	if parsedArgs.VersionRequested || parsedArgs.CommandName == "version" {
		fmt.Printf("sharpmerge %s\n", Version)
		os.Exit(0)
	}

	if parsedArgs.CommandName == "" || parsedArgs.CommandName == "help" {
		if parsedArgs.CommandName == "" && !parsedArgs.HelpRequested && len(args) > 0 {
			fmt.Printf("Unknown command: %s\n", strings.Join(args, " "))
			fmt.Println("Run `sharpmerge help` for usage.")
			os.Exit(1)
		}
		displayGeneralHelp()
		os.Exit(0)
	}

	if parsedArgs.HelpRequested {
		displayCommandHelp(parsedArgs.CommandName)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Warning: could not load config: %v\n", err)
	}

	switch parsedArgs.CommandName {
	case "merge":
		runMerge(parsedArgs, cfg)
	case "rollback":
		runRollback(parsedArgs)
	case "clean":
		runClean(parsedArgs)
	case "generate":
		runGenerate(parsedArgs, cfg)
	case "config get", "config set", "config list", "config":
		runConfig(parsedArgs, cfg)
	default:
		displayGeneralHelp()
		os.Exit(1)
	}
}

// mergeRoots resolves the template and target roots from positional args.
func mergeRoots(parsedArgs cli.CommandArgs) (string, string, error) {
	if len(parsedArgs.Variables) == 0 {
		return "", "", fmt.Errorf("merge needs a template root: sharpmerge merge <templateRoot> [targetRoot]")
	}
	templateRoot := parsedArgs.Variables[0]
	targetRoot := "."
	if len(parsedArgs.Variables) > 1 {
		targetRoot = parsedArgs.Variables[1]
	}
	return templateRoot, targetRoot, nil
}

// globPatterns resolves include/exclude globs: a flag wins over config, and
// both fall back to the walker defaults.
func globPatterns(parsedArgs cli.CommandArgs, cfg config.Config) (includes, excludes []string) {
	includes = cfg.Include
	excludes = cfg.Exclude
	if v, ok := parsedArgs.Flag("include", ""); ok {
		includes = strings.Split(v, ",")
	}
	if v, ok := parsedArgs.Flag("exclude", ""); ok {
		excludes = strings.Split(v, ",")
	}
	return includes, excludes
}

func runMerge(parsedArgs cli.CommandArgs, cfg config.Config) {
	templateRoot, targetRoot, err := mergeRoots(parsedArgs)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	includes, excludes := globPatterns(parsedArgs, cfg)
	walker := scaffold.NewWalker(includes, excludes)
	pairs, err := walker.ScanPair(templateRoot, targetRoot)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if parsedArgs.Bool("batch", "b") {
		runBatchMerge(pairs, parsedArgs, cfg)
		return
	}

	initialModel := app.Model{
		CurrentScreen:  app.ScreenReview,
		Pairs:          pairs,
		TerminalWidth:  80,
		TerminalHeight: 24,
	}
	// Copies new files and commits no-op candidates before the first frame.
	initialModel = screens.AdvanceToNextSession(initialModel)

	p := tea.NewProgram(ProgramModel{M: initialModel}, tea.WithAltScreen())
	if err := p.Start(); err != nil {
		fmt.Println("Error running program:", err)
		os.Exit(1)
	}
}

// runBatchMerge merges every pair without prompting, under the configured
// batch policy.
func runBatchMerge(pairs []scaffold.Pair, parsedArgs cli.CommandArgs, cfg config.Config) {
	decide := merge.AcceptAll
	policy := cfg.BatchDecision
	if parsedArgs.Bool("skip-conflicts", "") {
		policy = "skip-conflicts"
	}
	if policy == "skip-conflicts" {
		decide = merge.AcceptNewOnly
	}

	bar := progressbar.NewOptions(len(pairs),
		progressbar.OptionSetDescription("merging"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var copied, merged, skipped, failed int
	var results []merge.FileResult
	for _, pair := range pairs {
		switch pair.Class {
		case scaffold.FileIgnored:
			// not counted

		case scaffold.FileNew:
			if err := scaffold.CopyNew(pair); err != nil {
				failed++
				fmt.Printf("\n%s: %v\n", pair.RelPath, err)
			} else {
				copied++
			}

		case scaffold.FileMergeCandidate:
			result := merge.MergeFile(pair.GeneratedPath, pair.TargetPath, decide)
			results = append(results, result)
			switch result.Status {
			case merge.StatusMerged:
				merged++
				if result.BackupPath != "" && !cfg.ShouldKeepBackups() {
					if err := merge.RemoveBackup(result.ExistingPath); err != nil && cli.IsDebugEnabled() {
						fmt.Printf("\ncleanup: %v\n", err)
					}
				}
			case merge.StatusSkipped:
				skipped++
			case merge.StatusError:
				failed++
				fmt.Printf("\n%s: %s\n", pair.RelPath, result.Message)
			}
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Printf("%d copied, %d merged, %d skipped, %d failed\n", copied, merged, skipped, failed)
	if cli.IsVerboseEnabled() {
		for _, result := range results {
			fmt.Printf("  %s: %s (%s)\n", result.ExistingPath, result.Status, result.Message)
			for _, conflict := range result.Conflicts {
				fmt.Printf("    conflict: %s\n", conflict)
			}
			for _, name := range result.Preserved {
				fmt.Printf("    preserved hand-written method %s\n", name)
			}
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// collectBackupTargets walks root and returns the target path of every
// sibling .backup file found.
func collectBackupTargets(root string) ([]string, error) {
	var targets []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".backup") {
			targets = append(targets, strings.TrimSuffix(path, ".backup"))
		}
		return nil
	})
	return targets, err
}

func runRollback(parsedArgs cli.CommandArgs) {
	root := "."
	if len(parsedArgs.Variables) > 0 {
		root = parsedArgs.Variables[0]
	}
	targets, err := collectBackupTargets(root)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if len(targets) == 0 {
		fmt.Printf("No backups found under %s.\n", root)
		return
	}

	report := merge.RollbackEntity(targets)
	fmt.Println(report.Summary())
	if len(report.Failed) > 0 {
		os.Exit(1)
	}
}

func runClean(parsedArgs cli.CommandArgs) {
	root := "."
	if len(parsedArgs.Variables) > 0 {
		root = parsedArgs.Variables[0]
	}
	targets, err := collectBackupTargets(root)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var removed int
	for _, target := range targets {
		if err := merge.RemoveBackup(target); err != nil {
			fmt.Printf("could not remove backup for %s: %v\n", target, err)
			continue
		}
		removed++
	}
	fmt.Printf("Removed %d backup file(s).\n", removed)
}

func runGenerate(parsedArgs cli.CommandArgs, cfg config.Config) {
	if len(parsedArgs.Variables) == 0 {
		fmt.Println("generate needs a description: sharpmerge generate \"<what to generate>\" [--out <dir>]")
		os.Exit(1)
	}
	description := strings.Join(parsedArgs.Variables, " ")
	outDir := "."
	if v, ok := parsedArgs.Flag("out", "o"); ok {
		outDir = v
	}

	runner := generate.NewRunner(cfg.GeneratorCommand, cfg.GeneratorArgs)
	output, err := runner.Run(context.Background(), description, outDir)
	if output != "" {
		fmt.Println(output)
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runConfig(parsedArgs cli.CommandArgs, cfg config.Config) {
	switch parsedArgs.CommandName {
	case "config list", "config":
		fmt.Printf("generator:      %s\n", cfg.GeneratorCommand)
		fmt.Printf("generator-args: %s\n", strings.Join(cfg.GeneratorArgs, " "))
		fmt.Printf("include:        %s\n", strings.Join(cfg.Include, ","))
		fmt.Printf("exclude:        %s\n", strings.Join(cfg.Exclude, ","))
		fmt.Printf("keep-backups:   %t\n", cfg.ShouldKeepBackups())
		fmt.Printf("batch-decision: %s\n", cfg.BatchDecision)

	case "config get":
		if len(parsedArgs.Variables) != 1 {
			fmt.Println("Usage: sharpmerge config get <key>")
			os.Exit(1)
		}
		value, err := configValue(cfg, parsedArgs.Variables[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println(value)

	case "config set":
		if len(parsedArgs.Variables) < 2 {
			fmt.Println("Usage: sharpmerge config set <key> <value>")
			os.Exit(1)
		}
		key := parsedArgs.Variables[0]
		value := strings.Join(parsedArgs.Variables[1:], " ")
		if err := setConfigValue(&cfg, key, value); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := config.SaveConfig(cfg); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("%s = %s\n", key, value)
	}
}

func configValue(cfg config.Config, key string) (string, error) {
	switch key {
	case "generator":
		return cfg.GeneratorCommand, nil
	case "generator-args":
		return strings.Join(cfg.GeneratorArgs, " "), nil
	case "include":
		return strings.Join(cfg.Include, ","), nil
	case "exclude":
		return strings.Join(cfg.Exclude, ","), nil
	case "keep-backups":
		return fmt.Sprintf("%t", cfg.ShouldKeepBackups()), nil
	case "batch-decision":
		return cfg.BatchDecision, nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "generator":
		cfg.GeneratorCommand = value
	case "generator-args":
		cfg.GeneratorArgs = strings.Fields(value)
	case "include":
		cfg.Include = strings.Split(value, ",")
	case "exclude":
		cfg.Exclude = strings.Split(value, ",")
	case "keep-backups":
		keep := value == "true"
		cfg.KeepBackups = &keep
	case "batch-decision":
		if value != "accept-all" && value != "skip-conflicts" {
			return fmt.Errorf("batch-decision must be accept-all or skip-conflicts")
		}
		cfg.BatchDecision = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// displayGeneralHelp prints the top-level help message.
func displayGeneralHelp() {
	fmt.Println("sharpmerge - structured C# source merging")
	fmt.Println("Usage: sharpmerge <command> [arguments...] [--flags...]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  merge <templateRoot> [targetRoot]   Merge generated files into a target tree")
	fmt.Println("  rollback [root]                     Restore files from their .backup siblings")
	fmt.Println("  clean [root]                        Remove leftover .backup files")
	fmt.Println("  generate <description> [--out dir]  Run the configured code generator")
	fmt.Println("  config get|set|list                 Read or change settings")
	fmt.Println("  version                             Print the version")
	fmt.Println()
	fmt.Println("Global flags: --verbose/-v, --debug, --help/-h, --version")
	fmt.Println("Run `sharpmerge <command> --help` for command-specific help.")
}

// displayCommandHelp prints help for a single command.
func displayCommandHelp(commandName string) {
	switch commandName {
	case "merge":
		fmt.Println("Usage: sharpmerge merge <templateRoot> [targetRoot]")
		fmt.Println()
		fmt.Println("Scans templateRoot for C# files and merges each one into its")
		fmt.Println("counterpart under targetRoot (default \".\"). Files without a")
		fmt.Println("counterpart are copied. By default every pending member is")
		fmt.Println("reviewed interactively.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --batch/-b           Apply without prompting")
		fmt.Println("  --skip-conflicts     In batch mode, keep the existing side of conflicts")
		fmt.Println("  --include <globs>    Comma-separated include globs (default **/*.cs)")
		fmt.Println("  --exclude <globs>    Comma-separated exclude globs")
	case "rollback":
		fmt.Println("Usage: sharpmerge rollback [root]")
		fmt.Println()
		fmt.Println("Finds every .backup file under root (default \".\") and restores")
		fmt.Println("its sibling to the backed-up contents.")
	case "clean":
		fmt.Println("Usage: sharpmerge clean [root]")
		fmt.Println()
		fmt.Println("Removes every .backup file under root (default \".\").")
	case "generate":
		fmt.Println("Usage: sharpmerge generate \"<description>\" [--out <dir>]")
		fmt.Println()
		fmt.Println("Runs the generator configured via `config set generator ...` with")
		fmt.Println("the description appended, working inside --out (default \".\").")
	case "config", "config get", "config set", "config list":
		fmt.Println("Usage: sharpmerge config list")
		fmt.Println("       sharpmerge config get <key>")
		fmt.Println("       sharpmerge config set <key> <value>")
		fmt.Println()
		fmt.Println("Keys: generator, generator-args, include, exclude, keep-backups,")
		fmt.Println("      batch-decision")
	default:
		displayGeneralHelp()
	}
}

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
	"github.com/mario1918/testCaseGenie-NG/internal/workbench"
)

var errUsage = errors.New("usage")

type command struct {
	usage string
	help  string
	// raw commands get the rest of the line untouched as their only argument.
	raw bool
	run func(ctx context.Context, sh *shell, args []string) error
}

// shell dispatches REPL lines to workbench operations and prints the result.
type shell struct {
	wb          *workbench.Workbench
	out         io.Writer
	relayURL    string
	provider    string
	unsubscribe func()
}

func newShell(wb *workbench.Workbench, out io.Writer, relayURL, provider string) *shell {
	sh := &shell{wb: wb, out: out, relayURL: relayURL, provider: provider}
	sh.unsubscribe = wb.Store.Subscribe(func(e workbench.Event) {
		if e == workbench.EventLoading && wb.Store.Snapshot().Loading {
			fmt.Fprintln(sh.out, mutedStyle.Render("working..."))
		}
	})
	return sh
}

func (sh *shell) close() {
	sh.unsubscribe()
}

func (sh *shell) run(ctx context.Context, line string) error {
	head, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	if head == "" {
		return nil
	}

	name := strings.ToLower(head)
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, type 'help'", name)
	}

	var args []string
	if cmd.raw {
		if rest = strings.TrimSpace(rest); rest != "" {
			args = []string{rest}
		}
	} else {
		var err error
		if args, err = splitArgs(rest); err != nil {
			return err
		}
	}

	err := cmd.run(ctx, sh, args)
	if errors.Is(err, errUsage) {
		return fmt.Errorf("usage: %s %s", name, cmd.usage)
	}
	return err
}

func (sh *shell) println(s string) {
	fmt.Fprintln(sh.out, s)
}

func (sh *shell) printIssues() {
	sh.println(renderIssues(sh.wb.Store.Snapshot()))
}

func (sh *shell) printCases() {
	sh.println(renderTestCases(sh.wb.Store.TestCases()))
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":       {help: "show this list", run: cmdHelp},
		"health":     {help: "check relay and tracker connectivity", run: cmdHealth},
		"search":     {usage: "[type=X] [component=Y] [sprint=Z] [jql=\"...\"]", help: "filter issues", run: cmdSearch},
		"issues":     {help: "show the current issue page", run: cmdIssues},
		"next":       {help: "next issue page", run: cmdNext},
		"prev":       {help: "previous issue page", run: cmdPrev},
		"clear":      {help: "drop filters and reload", run: cmdClear},
		"reload":     {help: "reload the current page", run: cmdReload},
		"select":     {usage: "<issue-key>", help: "make an issue active", run: cmdSelect},
		"components": {help: "list components", run: cmdComponents},
		"sprints":    {usage: "[board-id]", help: "list sprints of a board", run: cmdSprints},
		"boards":     {help: "list boards", run: cmdBoards},
		"generate":   {usage: "[prompt=\"...\"] [note=\"...\"]", help: "generate test cases for the active issue", run: cmdGenerate},
		"more":       {usage: "[prompt=\"...\"] [note=\"...\"]", help: "generate additional test cases", run: cmdMore},
		"cases":      {help: "show the test case table", run: cmdCases},
		"show":       {usage: "<id>", help: "show one test case in full", run: cmdShow},
		"add":        {usage: "<title> | <steps> | <expected result> [| priority]", help: "add a test case", raw: true, run: cmdAdd},
		"edit":       {usage: "<id> <title> | <steps> | <expected result> [| priority]", help: "edit a test case, blank fields are kept", raw: true, run: cmdEdit},
		"delete":     {usage: "<id>", help: "delete a test case", run: cmdDelete},
		"status":     {usage: "<id> <PASS|FAIL|WIP|BLOCKED|UNEXECUTED>", help: "set execution status", run: cmdStatus},
		"sort":       {usage: "<id|title|priority|status> [desc]", help: "sort the table", run: cmdSort},
		"export":     {usage: "[path]", help: "write the table to an .xlsx file", run: cmdExport},
		"import":     {usage: "<path>", help: "replace the table with an .xlsx file", run: cmdImport},
		"versions":   {help: "list versions", run: cmdVersions},
		"cycles":     {usage: "<version-id>", help: "list test cycles of a version", run: cmdCycles},
		"push":       {usage: "<version-id> <cycle-id>", help: "import the table into test management", run: cmdPush},
	}
}

func cmdHelp(_ context.Context, sh *shell, _ []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := commands[name]
		sh.println(fmt.Sprintf("%s %s", headerStyle.Render(fitCell(name, 11)), c.help))
		if c.usage != "" {
			sh.println(mutedStyle.Render(strings.Repeat(" ", 12) + name + " " + c.usage))
		}
	}
	sh.println(mutedStyle.Render("quit, exit or q leaves the shell"))
	return nil
}

func cmdHealth(ctx context.Context, sh *shell, _ []string) error {
	sh.println(renderConnections(sh.wb.CheckConnections(ctx), sh.relayURL, sh.provider))
	return nil
}

func cmdSearch(ctx context.Context, sh *shell, args []string) error {
	filter, err := parseFilter(args)
	if err != nil {
		return err
	}
	if err := sh.wb.Browser.Search(ctx, filter); err != nil {
		return err
	}
	sh.printIssues()
	return nil
}

func cmdIssues(_ context.Context, sh *shell, _ []string) error {
	sh.printIssues()
	return nil
}

func cmdNext(ctx context.Context, sh *shell, _ []string) error {
	if err := sh.wb.Browser.Next(ctx); err != nil {
		return err
	}
	sh.printIssues()
	return nil
}

func cmdPrev(ctx context.Context, sh *shell, _ []string) error {
	if err := sh.wb.Browser.Previous(ctx); err != nil {
		return err
	}
	sh.printIssues()
	return nil
}

func cmdClear(ctx context.Context, sh *shell, _ []string) error {
	if err := sh.wb.Browser.ClearFilters(ctx); err != nil {
		return err
	}
	sh.printIssues()
	return nil
}

func cmdReload(ctx context.Context, sh *shell, _ []string) error {
	if err := sh.wb.Browser.Reload(ctx); err != nil {
		return err
	}
	sh.printIssues()
	return nil
}

func cmdSelect(_ context.Context, sh *shell, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	issue, err := sh.wb.Browser.Select(args[0])
	if err != nil {
		return err
	}
	sh.println(renderIssue(issue))
	return nil
}

func cmdComponents(ctx context.Context, sh *shell, _ []string) error {
	components, err := sh.wb.Browser.LoadComponents(ctx)
	if err != nil {
		return err
	}
	sh.println(renderComponents(components))
	return nil
}

func cmdSprints(ctx context.Context, sh *shell, args []string) error {
	boardID := 0
	if len(args) > 0 {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return errUsage
		}
		boardID = id
	}
	sprints, err := sh.wb.Browser.LoadSprints(ctx, boardID)
	if err != nil {
		return err
	}
	sh.println(renderSprints(sprints))
	return nil
}

func cmdBoards(ctx context.Context, sh *shell, _ []string) error {
	boards, err := sh.wb.Browser.LoadBoards(ctx)
	if err != nil {
		return err
	}
	sh.println(renderBoards(boards))
	return nil
}

func generateOptions(args []string) (workbench.GenerateOptions, error) {
	opts, rest := parseOptions(args)
	if len(rest) > 0 {
		return workbench.GenerateOptions{}, errUsage
	}
	return workbench.GenerateOptions{Prompt: opts["prompt"], SpecialComments: opts["note"]}, nil
}

func cmdGenerate(ctx context.Context, sh *shell, args []string) error {
	opts, err := generateOptions(args)
	if err != nil {
		return err
	}
	cases, err := sh.wb.Table.Generate(ctx, opts)
	if err != nil {
		return err
	}
	sh.printCases()
	sh.println(renderSuccess(fmt.Sprintf("Generated %d test cases", len(cases))))
	return nil
}

func cmdMore(ctx context.Context, sh *shell, args []string) error {
	opts, err := generateOptions(args)
	if err != nil {
		return err
	}
	cases, err := sh.wb.Table.GenerateMore(ctx, opts)
	if err != nil {
		return err
	}
	sh.printCases()
	sh.println(renderSuccess(fmt.Sprintf("Added %d test cases", len(cases))))
	return nil
}

func cmdCases(_ context.Context, sh *shell, _ []string) error {
	sh.printCases()
	return nil
}

func findCase(sh *shell, id string) (model.TestCase, error) {
	cases := sh.wb.Store.TestCases()
	i := slices.IndexFunc(cases, func(tc model.TestCase) bool { return tc.ID == id })
	if i < 0 {
		return model.TestCase{}, fmt.Errorf("%w: %s", workbench.ErrTestCaseNotFound, id)
	}
	return cases[i], nil
}

func cmdShow(_ context.Context, sh *shell, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	tc, err := findCase(sh, args[0])
	if err != nil {
		return err
	}
	sh.println(renderTestCase(tc))
	return nil
}

func cmdAdd(_ context.Context, sh *shell, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	tc, err := sh.wb.Table.Add(parseCaseFields(args[0]))
	if err != nil {
		return err
	}
	sh.println(renderSuccess("Added test case " + tc.ID))
	return nil
}

func cmdEdit(_ context.Context, sh *shell, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	id, fields, ok := strings.Cut(args[0], " ")
	if !ok {
		return errUsage
	}
	current, err := findCase(sh, id)
	if err != nil {
		return err
	}
	if err := sh.wb.Table.Update(mergeCase(current, parseCaseFields(fields))); err != nil {
		return err
	}
	sh.println(renderSuccess("Updated test case " + current.ID))
	return nil
}

func cmdDelete(_ context.Context, sh *shell, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := sh.wb.Table.Delete(args[0]); err != nil {
		return err
	}
	sh.println(renderSuccess("Deleted test case " + args[0]))
	return nil
}

func cmdStatus(_ context.Context, sh *shell, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	if err := sh.wb.Table.SetStatus(args[0], args[1]); err != nil {
		return err
	}
	sh.println(renderSuccess("Updated status of " + args[0]))
	return nil
}

func cmdSort(_ context.Context, sh *shell, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errUsage
	}
	desc := len(args) == 2 && strings.EqualFold(args[1], "desc")
	if err := sh.wb.Table.Sort(workbench.SortField(strings.ToLower(args[0])), desc); err != nil {
		return err
	}
	sh.printCases()
	return nil
}

func cmdExport(_ context.Context, sh *shell, args []string) error {
	var buf bytes.Buffer
	name, err := sh.wb.Table.Export(&buf)
	if err != nil {
		return err
	}

	path := name
	if len(args) > 0 {
		path = args[0]
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, name)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	sh.println(renderSuccess("Exported to " + path))
	return nil
}

func cmdImport(_ context.Context, sh *shell, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	cases, err := sh.wb.Table.Import(f)
	if err != nil {
		return err
	}
	sh.printCases()
	sh.println(renderSuccess(fmt.Sprintf("Imported %d test cases", len(cases))))
	return nil
}

func cmdVersions(ctx context.Context, sh *shell, _ []string) error {
	versions, err := sh.wb.Table.LoadVersions(ctx)
	if err != nil {
		return err
	}
	sh.println(renderVersions(versions))
	return nil
}

func cmdCycles(ctx context.Context, sh *shell, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	versionID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errUsage
	}
	cycles, err := sh.wb.Table.LoadCycles(ctx, versionID)
	if err != nil {
		return err
	}
	sh.println(renderCycles(cycles))
	return nil
}

func cmdPush(ctx context.Context, sh *shell, args []string) error {
	var target workbench.PushTarget
	if len(args) > 0 {
		v, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errUsage
		}
		target.VersionID = &v
	}
	if len(args) > 1 {
		c, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return errUsage
		}
		target.CycleID = &c
	}

	result, err := sh.wb.Table.Push(ctx, target)
	if err != nil {
		return err
	}
	sh.println(renderSuccess(workbench.PushSummary(result)))
	return nil
}

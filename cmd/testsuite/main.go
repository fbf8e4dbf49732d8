package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/user"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	c := &cobra.Command{}

	c.AddCommand(
		testCmd(),
	)

	return c
}

var (
	flagVerbose  bool
	flagRun      string
	flagParanoid []int
	flagKeepTmp  bool
	flagReport   string
)

func testCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "test",
		Short: "Build and run unit/integration tests against the perf subsystem of the host",
		RunE:  buildAndRunTests,
	}

	f := c.Flags()
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "If set, both this command will output verbosely and all called "+
		"commands will be called verbosely as well, thus outputting extra information")
	f.StringVar(&flagRun, "run", "", "Run only those tests and examples matching the regular expression.")
	f.IntSliceVar(&flagParanoid, "paranoid", []int{-1, 1, 2}, "The values of perf_event_paranoid to run the tests "+
		"with, every value is a separate test environment")
	f.BoolVar(&flagKeepTmp, "keep-tmp", false, "If set, the temporary directories will not be deleted after the test"+
		"run so intermediate files can be inspected")
	f.StringVar(&flagReport, "report", "", "If set, a HTML test matrix is written to this path")
	return c
}

// A list of packages to be included in the test suite
var packages = []string{
	"github.com/dylandreimerink/perfmon",
	"github.com/dylandreimerink/perfmon/events",
	"github.com/dylandreimerink/perfmon/kernelsupport",
	"github.com/dylandreimerink/perfmon/perf",
	"github.com/dylandreimerink/perfmon/internal/syscall",

	// this package contains the tests which need real counters
	"github.com/dylandreimerink/perfmon/cmd/testsuite/integration",
}

const paranoidPath = "/proc/sys/kernel/perf_event_paranoid"

func printlnVerbose(args ...interface{}) {
	if !flagVerbose {
		return
	}

	fmt.Println(args...)
}

type testResult struct {
	Status string
}

func buildAndRunTests(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	// Changing perf_event_paranoid requires root
	err := elevate()
	if err != nil {
		return fmt.Errorf("error while elevating: %w", err)
	}

	tmpDir, err := os.MkdirTemp(os.TempDir(), "perftestsuite-*")
	if err != nil {
		return fmt.Errorf("error while making a temporary directory: %w", err)
	}
	printlnVerbose("Using tempdir:", tmpDir)

	if !flagKeepTmp {
		defer func() {
			printlnVerbose("--- Cleaning up tmp dir ---")
			err := os.RemoveAll(tmpDir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error while cleaning up tmp dir '%s': %s", tmpDir, err.Error())
			}
		}()
	}

	executables, err := buildTests(tmpDir)
	if err != nil {
		return err
	}

	prevLevel, err := os.ReadFile(paranoidPath)
	if err != nil {
		return fmt.Errorf("error while reading paranoid level: %w", err)
	}
	defer func() {
		printlnVerbose("--- Restoring paranoid level ---")
		err := os.WriteFile(paranoidPath, prevLevel, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error while restoring '%s': %s", paranoidPath, err.Error())
		}
	}()

	levels := append([]int(nil), flagParanoid...)
	// Sort environments so we always execute them in the same order.
	sort.Ints(levels)

	results := make(map[string]map[string]testResult)
	failed := false
	for _, level := range levels {
		envName := "paranoid=" + strconv.Itoa(level)
		envResults, err := testEnvironment(level, tmpDir, executables)
		if err != nil {
			return fmt.Errorf("%s: %w", envName, err)
		}

		for _, res := range envResults {
			if res.Status == "FAIL" {
				failed = true
			}
		}
		results[envName] = envResults
	}

	if flagReport != "" {
		f, err := os.Create(flagReport)
		if err != nil {
			return fmt.Errorf("error while creating report: %w", err)
		}
		defer f.Close()

		if err = renderHTMLReport(results, f); err != nil {
			return err
		}
	}

	if failed {
		return fmt.Errorf("one or more tests failed")
	}

	return nil
}

func buildTests(tmpDir string) ([]string, error) {
	printlnVerbose("--- Build test binaries ---")

	buildFlags := []string{
		"test",               // invoke the test sub-command
		"-c",                 // Compile the binary, but don't execute it
		"-tags", "perftests", // Include tests that use real perf counters
	}

	executables := make([]string, 0, len(packages))
	for _, pkg := range packages {
		pkgName := strings.Join([]string{path.Base(pkg), "test"}, ".")
		execPath := path.Join(tmpDir, pkgName)

		arguments := append(
			buildFlags,
			"-o", execPath, // Output test in the temporary directory
			pkg,
		)

		_, err := execCmd("go", arguments...)
		if err != nil {
			return nil, fmt.Errorf("error while building tests: %w", err)
		}

		// If a package contains no tests, no executable is generated
		if _, err := os.Stat(execPath); err == nil {
			executables = append(executables, execPath)
		}
	}

	return executables, nil
}

func testEnvironment(level int, tmpDir string, executables []string) (map[string]testResult, error) {
	printlnVerbose("=== Running tests with perf_event_paranoid =", level, "===")

	err := os.WriteFile(paranoidPath, []byte(strconv.Itoa(level)+"\n"), 0644)
	if err != nil {
		return nil, fmt.Errorf("error while setting paranoid level: %w", err)
	}

	results := make(map[string]testResult)
	for _, execPath := range executables {
		flags := []string{"-test.v"}
		if flagRun != "" {
			flags = append(flags, "-test.run", flagRun)
		}

		// A failing test binary exits non-zero, the verdict is taken from the output
		output, _ := execOutput(nil, execPath, flags...)

		resultsPath := fmt.Sprintf("%s.paranoid%d.results", execPath, level)
		if err = os.WriteFile(resultsPath, output, 0644); err != nil {
			return nil, fmt.Errorf("error while writing results: %w", err)
		}

		pkg := strings.TrimSuffix(path.Base(execPath), ".test")
		for name, res := range parseResults(bytes.NewReader(output)) {
			results[pkg+"."+name] = res
		}
	}

	return results, nil
}

var resultLine = regexp.MustCompile(`^\s*--- (PASS|FAIL|SKIP): (\S+)`)

// parseResults extracts the verdict of every (sub)test from verbose test output.
func parseResults(r io.Reader) map[string]testResult {
	results := make(map[string]testResult)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		match := resultLine.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}

		results[match[2]] = testResult{Status: match[1]}
	}

	return results
}

func execCmd(name string, args ...string) ([]byte, error) {
	return execEnvCmd(nil, name, args...)
}

func execEnvCmd(env []string, name string, args ...string) ([]byte, error) {
	output, err := execOutput(env, name, args...)
	if err != nil {
		fmt.Fprintln(os.Stderr, string(output))
		if ee, ok := err.(*exec.ExitError); ok {
			fmt.Fprintln(os.Stderr, string(ee.Stderr))
		}
		return nil, err
	}

	return output, nil
}

func execOutput(env []string, name string, args ...string) ([]byte, error) {
	printlnVerbose(strings.Join(append([]string{"EXEC:", name}, args...), " "))

	cmd := exec.Command(name, args...)
	if env != nil {
		cmd.Env = env
	}
	return cmd.Output()
}

// elevate checks if we are currently running as root, if not we will request the user to elevate the program
func elevate() error {
	curUser, err := user.Current()
	if err != nil {
		return fmt.Errorf("error while getting user: %w", err)
	}

	// If we are user 0(root), we don't need to elevate
	if curUser.Uid == "0" {
		return nil
	}

	fmt.Println("This testsuite requires root privileges, attempting to elevate via sudo...")

	sudo, err := exec.LookPath("sudo")
	if err != nil {
		return fmt.Errorf("error while looking up sudo: %w", err)
	}

	// Elevate to root by execve'ing sudo with the current args. This should prompt the user for their sudo password
	// and then continue executing this program(again from the start, since this process will be replaced)
	// NOTE: The `--preserve-env=PATH` will make sure that the current PATH is preserved which is important since most
	// users will not have setup root with the correct go environment variables.
	err = unix.Exec(sudo, append([]string{"sudo", "--preserve-env=PATH"}, os.Args...), os.Environ())
	if err != nil {
		return fmt.Errorf("error execve'ing into sudo: %w", err)
	}

	return nil
}

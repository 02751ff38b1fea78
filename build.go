//go:build ignore

// build.go - fnocli build system
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, server, fetcher, processor, indexcsv, strength-report, clean, test, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

const (
	module         = "fnocli"
	contractsPkg   = module + "/pkg/contracts"
	distDirName    = "dist"
	releaseDirName = "release"
)

var (
	// binaries built from ./cmd/<name>
	binaries = []string{"server", "fetcher", "processor", "indexcsv", "strength-report"}

	// release platforms as GOOS/GOARCH
	releasePlatforms = []string{"linux/amd64", "linux/arm64", "darwin/arm64", "windows/amd64"}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

// buildContext holds configuration for one build invocation
type buildContext struct {
	Verbose bool
	GOOS    string
	GOARCH  string
	OutDir  string
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if runtime.GOOS == "windows" {
		colorReset, colorRed, colorGreen, colorYellow, colorBlue, colorCyan = "", "", "", "", "", ""
	}

	printHeader()
	startTime := time.Now()
	ctx := &buildContext{Verbose: *verbose, GOOS: runtime.GOOS, GOARCH: runtime.GOARCH, OutDir: distDirName}

	var err error
	switch {
	case *target == "all":
		err = buildAll(ctx)
	case *target == "clean":
		err = clean()
	case *target == "test":
		err = runTests(ctx.Verbose)
	case *target == "release":
		err = buildRelease(ctx)
	case isBinary(*target):
		err = buildExecutable(*target, ctx)
	default:
		showHelp()
		os.Exit(1)
	}
	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "         fnocli - Build System             " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

func isBinary(name string) bool {
	for _, b := range binaries {
		if b == name {
			return true
		}
	}
	return false
}

func buildAll(ctx *buildContext) error {
	printInfo("Building all executables...")
	if err := os.MkdirAll(ctx.OutDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", ctx.OutDir, err)
	}
	for _, name := range binaries {
		if err := buildExecutable(name, ctx); err != nil {
			return err
		}
	}
	return copyConfigExample(ctx.OutDir)
}

// ldflags stamps the version metadata reported by -version and /api/version
func ldflags() string {
	flags := []string{
		"-s", "-w",
		fmt.Sprintf("-X %s.BuildTime=%s", contractsPkg, time.Now().UTC().Format(time.RFC3339)),
	}
	if commit := gitOutput("rev-parse", "--short", "HEAD"); commit != "" {
		flags = append(flags, fmt.Sprintf("-X %s.GitCommit=%s", contractsPkg, commit))
	} else {
		printWarning("git commit unavailable; binaries will report 'unknown'")
	}
	if branch := gitOutput("rev-parse", "--abbrev-ref", "HEAD"); branch != "" {
		flags = append(flags, fmt.Sprintf("-X %s.GitBranch=%s", contractsPkg, branch))
	}
	return strings.Join(flags, " ")
}

func gitOutput(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func buildExecutable(name string, ctx *buildContext) error {
	output := filepath.Join(ctx.OutDir, name)
	if ctx.GOOS == "windows" {
		output += ".exe"
	}
	printInfo(fmt.Sprintf("Building %s (%s/%s)...", name, ctx.GOOS, ctx.GOARCH))

	args := []string{"build", "-trimpath", "-ldflags", ldflags(), "-o", output, "./cmd/" + name}
	if ctx.Verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}

	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH, "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build %s: %w", name, err)
	}
	printSuccess(fmt.Sprintf("Built %s", output))
	return nil
}

func buildRelease(ctx *buildContext) error {
	printInfo("Building release binaries...")
	for _, platform := range releasePlatforms {
		goos, goarch, _ := strings.Cut(platform, "/")
		rc := &buildContext{
			Verbose: ctx.Verbose,
			GOOS:    goos,
			GOARCH:  goarch,
			OutDir:  filepath.Join(releaseDirName, goos+"_"+goarch),
		}
		if err := buildAll(rc); err != nil {
			return err
		}
	}
	return nil
}

func runTests(verbose bool) error {
	printInfo("Running tests...")
	args := []string{"test", "-race", "-count=1", "./..."}
	if verbose {
		args = append(args, "-v")
	}
	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func clean() error {
	printInfo("Cleaning build artifacts...")
	for _, dir := range []string{distDirName, releaseDirName} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove %s: %w", dir, err)
		}
	}
	return nil
}

// copyConfigExample ships config.example.yaml next to the binaries when present
func copyConfigExample(outDir string) error {
	data, err := os.ReadFile("config.example.yaml")
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, "config.example.yaml"), data, 0644)
}

func showHelp() {
	targets := append([]string{"all", "clean", "test", "release"}, binaries...)
	sort.Strings(targets[4:])
	fmt.Println("Usage: go run build.go -target=TARGET [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	for _, t := range targets {
		fmt.Println("  " + t)
	}
}

// camportal drives the camera portal pages from a terminal.
//
// Each command performs what one button on a portal page does:
//
//	camportal [-url URL] [-timeout D] [-v] <command> [flags]
//
//	provision        -ssid -password -token   submit WiFi credentials
//	token-mgmt       -token -action           add or remove an admin token
//	goto-token-mgmt                           open the token management page
//	back                                      return to the provisioning page
//	quit                                      leave config mode
//	unlock           -token                   pass the stream gate
//
// The response element is printed on stdout, alerts on stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/camportal/internal/infrastructure/config"
	"github.com/nerrad567/camportal/internal/infrastructure/logging"
	"github.com/nerrad567/camportal/internal/portal"
)

// Version information - set at build time via ldflags
var version = "dev"

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// command is one portal action.
type command struct {
	name    string
	summary string
	run     func(ctx context.Context, page portal.Page, args []string, stderr io.Writer) error
}

var commands = []command{
	{"provision", "submit WiFi credentials to the configuration portal", runProvision},
	{"token-mgmt", "add or remove an admin token", runTokenAction},
	{"goto-token-mgmt", "open the token management page", runGoToTokenMgmt},
	{"back", "return from token management to provisioning", runBack},
	{"quit", "ask the device to leave config mode", runQuit},
	{"unlock", "pass the stream gate on the data portal", runUnlock},
}

// run parses args, performs one command and returns the process exit code.
//
// Parameters:
//   - ctx: Cancels the in-flight request
//   - args: Command line without the program name
//   - stdout: Receives the page's response text and page loads
//   - stderr: Receives alerts, usage and logs
//
// Returns:
//   - int: 0 on success, 1 when the command failed, 2 on a usage error
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	defaults, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	fs := flag.NewFlagSet("camportal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", defaults.BaseURL, "portal origin (env "+config.EnvPrefix+"URL)")
	timeout := fs.Duration("timeout", defaults.Timeout, "per-request timeout, 0 for none (env "+config.EnvPrefix+"TIMEOUT)")
	verbose := fs.Bool("v", false, "log requests to stderr")
	fs.Usage = func() { usage(fs, stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		usage(fs, stderr)
		return exitUsage
	}

	cmd, ok := lookup(fs.Arg(0))
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		usage(fs, stderr)
		return exitUsage
	}

	transport, err := portal.NewHTTPTransport(*baseURL, *timeout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	level := "error"
	if *verbose {
		level = "debug"
	}
	logger := logging.NewWithWriter(config.LoggingConfig{Level: level, Format: "text"}, version, stderr)

	page := portal.Page{
		Transport: transport,
		View:      &terminalView{stdout: stdout, stderr: stderr},
		Navigator: &portal.PageLoader{
			Transport: transport,
			OnLoad: func(path string, resp *portal.Response) {
				fmt.Fprintf(stdout, "loaded %s (%d %s)\n", path, resp.StatusCode, http.StatusText(resp.StatusCode))
			},
		},
		Logger: logger,
	}

	if err := cmd.run(ctx, page, fs.Args()[1:], stderr); err != nil {
		var usageErr usageError
		if errors.As(err, &usageErr) {
			return exitUsage
		}
		logger.Debug("command failed", "command", cmd.name, "error", err)
		return exitFailure
	}
	return exitOK
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "usage: camportal [flags] <command> [command flags]")
	fmt.Fprintln(w, "\nflags:")
	fs.PrintDefaults()
	fmt.Fprintln(w, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", c.name, c.summary)
	}
}

// usageError marks a command flag parsing failure; the flag package has
// already reported it.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }

// parseFlags parses a command's own flags and rejects stray arguments.
func parseFlags(fs *flag.FlagSet, args []string, stderr io.Writer) error {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return usageError{err}
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "%s: unexpected arguments %q\n", fs.Name(), fs.Args())
		return usageError{errors.New("unexpected arguments")}
	}
	return nil
}

func runProvision(ctx context.Context, page portal.Page, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("provision", flag.ContinueOnError)
	ssid := fs.String("ssid", "", "network name")
	password := fs.String("password", "", "network password")
	token := fs.String("token", "", "admin token")
	if err := parseFlags(fs, args, stderr); err != nil {
		return err
	}

	c, err := portal.NewProvisioningController(page, portal.Text(*ssid), portal.Text(*password), portal.Text(*token))
	if err != nil {
		return err
	}
	return c.Submit(ctx)
}

func runTokenAction(ctx context.Context, page portal.Page, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("token-mgmt", flag.ContinueOnError)
	token := fs.String("token", "", "admin token authorising the action, or the token to remove")
	action := fs.String("action", "add", "add or remove")
	if err := parseFlags(fs, args, stderr); err != nil {
		return err
	}

	c, err := portal.NewTokenManagementController(page, portal.Text(*token), portal.Text(*action))
	if err != nil {
		return err
	}
	return c.Submit(ctx)
}

func runGoToTokenMgmt(ctx context.Context, page portal.Page, args []string, stderr io.Writer) error {
	if err := parseFlags(flag.NewFlagSet("goto-token-mgmt", flag.ContinueOnError), args, stderr); err != nil {
		return err
	}

	c, err := portal.NewProvisioningController(page, portal.Text(""), portal.Text(""), portal.Text(""))
	if err != nil {
		return err
	}
	return c.GoToTokenManagement(ctx)
}

func runBack(ctx context.Context, page portal.Page, args []string, stderr io.Writer) error {
	if err := parseFlags(flag.NewFlagSet("back", flag.ContinueOnError), args, stderr); err != nil {
		return err
	}

	c, err := portal.NewTokenManagementController(page, portal.Text(""), portal.Text(""))
	if err != nil {
		return err
	}
	return c.Back(ctx)
}

func runQuit(ctx context.Context, page portal.Page, args []string, stderr io.Writer) error {
	if err := parseFlags(flag.NewFlagSet("quit", flag.ContinueOnError), args, stderr); err != nil {
		return err
	}

	c, err := portal.NewProvisioningController(page, portal.Text(""), portal.Text(""), portal.Text(""))
	if err != nil {
		return err
	}
	return c.Quit(ctx)
}

func runUnlock(ctx context.Context, page portal.Page, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("unlock", flag.ContinueOnError)
	token := fs.String("token", "", "admin token")
	if err := parseFlags(fs, args, stderr); err != nil {
		return err
	}

	c, err := portal.NewStreamGateController(page, portal.Text(*token))
	if err != nil {
		return err
	}
	return c.Submit(ctx)
}

// terminalView prints the response element to stdout and alerts to stderr.
type terminalView struct {
	stdout io.Writer
	stderr io.Writer
}

func (v *terminalView) ShowResponse(text string) {
	fmt.Fprintln(v.stdout, text)
}

func (v *terminalView) Alert(message string) {
	fmt.Fprintf(v.stderr, "alert: %s\n", message)
}

// SetBusy has nothing to disable; one command runs per process.
func (v *terminalView) SetBusy(portal.Control, bool) {}

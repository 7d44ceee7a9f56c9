// Command shellauth-demo runs a native-style login round-trip from a
// terminal. The user's own browser stands in for the shell's web view: the
// authorize URL is printed, and the custom-scheme redirect is pasted back in.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	arg "github.com/alexflint/go-arg"

	"github.com/authlite/shellauth"
	"github.com/authlite/shellauth/app"
	"github.com/authlite/shellauth/browser"
	"github.com/authlite/shellauth/events"
)

type args struct {
	Issuer      string `arg:"--issuer,required" help:"identity provider base URL"`
	ClientID    string `arg:"--client-id,required" help:"OAuth client ID"`
	RedirectURI string `arg:"--redirect-uri" default:"shellauth-demo://callback" help:"custom-scheme redirect URI"`
	DataDir     string `arg:"--data-dir" help:"settings and log directory"`
	LogLevel    string `arg:"--log-level" default:"warn"`
}

func (args) Version() string {
	return app.Name + " " + app.Version
}

// terminalAgent satisfies browser.Agent with the user's own browser as the
// surface, driven by printed instructions. An empty input line stands in for
// the user closing the web view.
type terminalAgent struct {
	onEvent func(browser.Event)
}

func (a *terminalAgent) Open(url string, onEvent func(browser.Event)) error {
	a.onEvent = onEvent
	fmt.Printf("Open this URL in your browser:\n\n  %s\n\nPaste the redirect URL here (empty line cancels):\n", url)
	return nil
}

func (a *terminalAgent) Close() {}

func (a *terminalAgent) reportClosed() {
	if a.onEvent != nil {
		a.onEvent(browser.Event{Kind: browser.KindClosed})
	}
}

func main() {
	var cli args
	arg.MustParse(&cli)

	agent := &terminalAgent{}
	native := true
	client, err := shellauth.NewClient(shellauth.Options{
		DataDir:     cli.DataDir,
		LogLevel:    cli.LogLevel,
		Issuer:      cli.Issuer,
		ClientID:    cli.ClientID,
		RedirectURI: cli.RedirectURI,
		Native:      &native,
		Agents: browser.AcquirerFunc(func(ctx context.Context) (browser.Agent, error) {
			return agent, nil
		}),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	outcome := make(chan shellauth.AuthEvent, 4)
	sub := events.SubscribeTo(client.Events(), func(evt shellauth.AuthEvent) {
		outcome <- evt
	})
	defer sub.Cancel()

	if err := client.LoginWithRedirect(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				agent.reportClosed()
				return
			}
			if !client.OnRedirectURI(line) {
				fmt.Println("redirect was not consumed; is an attempt still in flight?")
			}
		}
		agent.reportClosed()
	}()

	for evt := range outcome {
		switch evt.State {
		case shellauth.StateAuthenticated:
			fmt.Println("logged in as", evt.Email)
			return
		case shellauth.StateError:
			fmt.Fprintln(os.Stderr, "login failed:", evt.Err)
			os.Exit(1)
		}
	}
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pantrykeeper/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	Add(ctx context.Context) error
	List(ctx context.Context) error
	Expiring(ctx context.Context, args []string) error
	Consume(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Clear(ctx context.Context) error

	AddRecipe(ctx context.Context) error
	Recipes(ctx context.Context) error
	Suggest(ctx context.Context) error
	Photo(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, help, exit"
	helpLoggedIn  = "Available commands: add, list, expiring [days], consume [id] [qty], remove [id], clear, " +
		"recipe-add, recipes, suggest, photo [recipe-id] [file], logout, help, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
// Errors returned by command handlers are printed and the loop continues.
// Commands other than register, login and help need a logged-in session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("pantry%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if err := dispatch(ctx, a, cmd, args); err != nil {
			if errors.Is(err, errExit) {
				printlnFn("Bye!")
				return
			}
			printlnFn("Error:", describe(err))
		}
	}
}

var errExit = errors.New("exit")

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "exit", "quit":
		return errExit
	}

	if !a.isLoggedIn() {
		switch cmd {
		case "logout", "add", "list", "l", "expiring", "consume", "remove", "clear",
			"recipe-add", "recipes", "suggest", "photo":
			return client.ErrNotLoggedIn
		}
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "add":
		return a.Add(ctx)
	case "l", "list":
		return a.List(ctx)
	case "expiring":
		return a.Expiring(ctx, args)
	case "consume":
		return a.Consume(ctx, args)
	case "remove":
		return a.Remove(ctx, args)
	case "clear":
		return a.Clear(ctx)
	case "recipe-add":
		return a.AddRecipe(ctx)
	case "recipes":
		return a.Recipes(ctx)
	case "suggest":
		return a.Suggest(ctx)
	case "photo":
		return a.Photo(ctx, args)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}

// describe turns client errors into short user-facing messages.
func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrNotLoggedIn):
		return "please login first"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	default:
		return err.Error()
	}
}

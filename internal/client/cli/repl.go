package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/client/store"
)

// access is who may run a command.
type access int

const (
	anyone access = iota
	signedIn
	adminOnly
)

type command struct {
	name  string
	usage string
	help  string
	who   access
	run   func(a *App, ctx context.Context, args []string) error
}

// commands is the REPL command table, in help order.
var commands = []command{
	{name: "register", help: "create an account and sign in", run: (*App).register},
	{name: "login", help: "sign in with a username or email", run: (*App).login},
	{name: "products", usage: "[category-id|0] [page]", help: "list products", run: (*App).products},
	{name: "product", usage: "<id>", help: "show a product and its reviews", run: (*App).product},
	{name: "categories", help: "list categories", run: (*App).categories},

	{name: "whoami", help: "show the signed-in user", who: signedIn, run: (*App).whoami},
	{name: "profile", help: "change email, username or password", who: signedIn, run: (*App).profile},
	{name: "logout", help: "sign out", who: signedIn, run: (*App).logout},
	{name: "cart", help: "show the cart", who: signedIn, run: (*App).cart},
	{name: "add", usage: "<product-id> [qty]", help: "add to the cart", who: signedIn, run: (*App).add},
	{name: "remove", usage: "<product-id>", help: "remove a cart line", who: signedIn, run: (*App).remove},
	{name: "qty", usage: "<product-id> <qty>", help: "set a line's quantity", who: signedIn, run: (*App).qty},
	{name: "dec", usage: "<product-id>", help: "decrease a line by one", who: signedIn, run: (*App).dec},
	{name: "clear", help: "empty the cart", who: signedIn, run: (*App).clear},
	{name: "checkout", help: "place an order for the cart", who: signedIn, run: (*App).checkout},
	{name: "orders", usage: "[page]", help: "list orders", who: signedIn, run: (*App).listOrders},
	{name: "order", usage: "<id>", help: "show an order", who: signedIn, run: (*App).order},
	{name: "favorites", help: "list favorites", who: signedIn, run: (*App).listFavorites},
	{name: "fav", usage: "<product-id>", help: "add a favorite", who: signedIn, run: (*App).fav},
	{name: "unfav", usage: "<product-id>", help: "remove a favorite", who: signedIn, run: (*App).unfav},
	{name: "review", usage: "<product-id> <1-5> [comment]", help: "review a product", who: signedIn, run: (*App).review},
	{name: "unreview", usage: "<product-id>", help: "delete your review", who: signedIn, run: (*App).unreview},

	{name: "newproduct", help: "create a product", who: adminOnly, run: (*App).newProduct},
	{name: "price", usage: "<product-id> <price>", help: "change a price", who: adminOnly, run: (*App).setPrice},
	{name: "delproduct", usage: "<product-id>", help: "delete a product", who: adminOnly, run: (*App).deleteProduct},
	{name: "newcategory", usage: "<name>", help: "create a category", who: adminOnly, run: (*App).newCategory},
	{name: "delcategory", usage: "<id>", help: "delete a category", who: adminOnly, run: (*App).deleteCategory},
	{name: "status", usage: "<order-id> <status>", help: "set an order's status", who: adminOnly, run: (*App).orderStatus},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

var errUnknownCommand = errors.New("unknown command")

// usageError asks the REPL to print a command's usage line.
type usageError struct {
	cmd command
}

func (e usageError) Error() string {
	return "usage: " + strings.TrimSpace(e.cmd.name+" "+e.cmd.usage)
}

// execIface is the command surface the REPL drives. App implements it; tests
// may substitute a stub.
type execIface interface {
	status() string
	helpLines() []string
	exec(ctx context.Context, name string, args []string) error
}

func (a *App) level() access {
	switch {
	case a.isAdmin():
		return adminOnly
	case a.isLoggedIn():
		return signedIn
	default:
		return anyone
	}
}

func (a *App) helpLines() []string {
	lvl := a.level()
	lines := []string{"Available commands:"}
	for _, c := range commands {
		if c.who > lvl || (c.who == anyone && lvl > anyone && (c.name == "login" || c.name == "register")) {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %-28s %s", strings.TrimSpace(c.name+" "+c.usage), c.help))
	}
	return append(lines, fmt.Sprintf("  %-28s %s", "exit", "leave the program"))
}

func (a *App) exec(ctx context.Context, name string, args []string) error {
	c, ok := lookup(name)
	if !ok {
		return errUnknownCommand
	}
	err := c.run(a, ctx, args)
	if errors.Is(err, errUsage) {
		return usageError{cmd: c}
	}
	return err
}

// runREPL reads one command per line from reader and dispatches it to a.
// The loop ends on EOF or when the user types "exit" or "quit". Command
// errors are printed and never end the loop.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "sf%s> ", a.status())
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			for _, l := range a.helpLines() {
				fmt.Fprintln(out, l)
			}
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			if err := a.exec(ctx, cmd, args); err != nil {
				fmt.Fprintln(out, describe(cmd, err))
			}
		}
	}
}

func describe(cmd string, err error) string {
	var ue usageError
	switch {
	case errors.Is(err, errUnknownCommand):
		return "Unknown command: " + cmd
	case errors.As(err, &ue):
		return ue.Error()
	default:
		return "Error: " + message(err)
	}
}

// message is the user-facing text of err.
func message(err error) string {
	var ae *store.ActionError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

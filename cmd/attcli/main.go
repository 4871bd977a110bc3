// Command attcli is a terminal client for the attendance service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/attendly/attendly-cli/internal/client"
	"github.com/attendly/attendly-cli/internal/model"
	"github.com/attendly/attendly-cli/internal/report"
	"github.com/attendly/attendly-cli/internal/session"
)

const defaultAPIURL = "http://localhost:3001/api/v1"

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `attcli
Usage:
  attcli [-api URL] [-timeout 30s] [-v] <cmd> [args]

Commands:
  version
  login      -email <email> [-p <password>]       (prompts when -p omitted)
  logout
  whoami                                          (validates the stored session)
  profile
  update     [-phone s] [-password s] [-photo file]
  checkin
  checkout
  today
  summary    [-from yyyy-mm-dd] [-to yyyy-mm-dd] [-csv file]
  users      [-page n] [-limit n]
  user-add   -email <email> -p <password> -first <name> -last <name> [...]
  user-edit  -id <id> [...]
  user-rm    -id <id>
`)
	os.Exit(2)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// value unwraps a result or exits with its error envelope.
func value[T any](res client.Result[T]) *T {
	if !res.OK() {
		fmt.Fprintf(os.Stderr, "error: %s (status %d)\n", res.Error, res.Status)
		os.Exit(1)
	}
	return res.Data
}

// setFlags reports which flags were explicitly passed, so omitted and
// empty-valued flags can be told apart for partial updates.
func setFlags(fs *flag.FlagSet) map[string]bool {
	seen := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	return seen
}

// readPassword prompts without echo on a terminal, else reads a line from stdin.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(b), err
	}
	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// defaultRange is the summary page default: first of the current month to today.
func defaultRange(now time.Time) (string, string) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.Format(time.DateOnly), now.Format(time.DateOnly)
}

// main dispatches subcommands against the authenticated API client.
func main() {
	apiDefault := os.Getenv("ATTENDLY_API_URL")
	if apiDefault == "" {
		apiDefault = defaultAPIURL
	}
	api := flag.String("api", apiDefault, "backend base URL")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	cli := client.New(*api, session.NewFileStore(),
		client.WithTimeout(*timeout),
		client.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("attcli %s (%s)\n", version, buildDate)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		p := fs.String("p", "", "password (prompted when omitted)")
		_ = fs.Parse(args)
		if *email == "" {
			fmt.Fprintln(os.Stderr, "need -email")
			os.Exit(1)
		}
		if *p == "" {
			pw, err := readPassword("password: ")
			if err != nil {
				fail(err)
			}
			*p = pw
		}

		lr := value(cli.Login(ctx, *email, *p))
		fmt.Printf("logged in as %s %s <%s>\n", lr.User.FirstName, lr.User.LastName, lr.User.Email)

	case "logout":
		// local session is cleared even when the server call fails
		if res := cli.Logout(ctx); !res.OK() {
			fmt.Fprintf(os.Stderr, "warning: server logout failed: %s\n", res.Error)
		}
		fmt.Println("ok")

	case "whoami":
		printJSON(*value(cli.Me(ctx)))

	case "profile":
		printJSON(*value(cli.Profile(ctx)))

	case "update":
		fs := flag.NewFlagSet("update", flag.ExitOnError)
		phone := fs.String("phone", "", "phone number")
		password := fs.String("password", "", "new password")
		photo := fs.String("photo", "", "photo file")
		_ = fs.Parse(args)

		seen := setFlags(fs)
		if len(seen) == 0 {
			fmt.Fprintln(os.Stderr, "nothing to update")
			os.Exit(1)
		}
		var upd model.ProfileUpdate
		if seen["phone"] {
			upd.Phone = phone
		}
		if seen["password"] {
			upd.Password = password
		}
		if seen["photo"] {
			f, err := os.Open(*photo)
			if err != nil {
				fail(err)
			}
			defer f.Close()
			upd.PhotoName = *photo
			upd.Photo = f
		}

		printJSON(*value(cli.UpdateProfile(ctx, upd)))

	case "checkin":
		att := value(cli.CheckIn(ctx))
		if att.CheckInTime != nil {
			fmt.Printf("checked in at %s\n", att.CheckInTime.Local().Format("15:04"))
		}
		printJSON(*att)

	case "checkout":
		att := value(cli.CheckOut(ctx))
		fmt.Printf("checked out, worked %s\n", report.WorkingHours(att.CheckInTime, att.CheckOutTime))
		printJSON(*att)

	case "today":
		res := cli.TodayAttendance(ctx)
		att := value(res)
		if att == nil {
			fmt.Println("no attendance record for today")
			break
		}
		printJSON(*att)

	case "summary":
		fs := flag.NewFlagSet("summary", flag.ExitOnError)
		defFrom, defTo := defaultRange(time.Now())
		from := fs.String("from", defFrom, "start date (yyyy-mm-dd)")
		to := fs.String("to", defTo, "end date (yyyy-mm-dd)")
		csvPath := fs.String("csv", "", "write CSV to file ('-'=stdout)")
		_ = fs.Parse(args)

		rows := *value(cli.AttendanceSummary(ctx, *from, *to))

		if *csvPath != "" {
			out := os.Stdout
			if *csvPath != "-" {
				f, err := os.Create(*csvPath)
				if err != nil {
					fail(err)
				}
				defer f.Close()
				out = f
			}
			if err := report.WriteCSV(out, rows); err != nil {
				fail(err)
			}
			break
		}

		printJSON(rows)
		printJSON(report.Summarize(rows))

	case "users":
		cmdUsers(ctx, cli, args)
	case "user-add":
		cmdUserAdd(ctx, cli, args)
	case "user-edit":
		cmdUserEdit(ctx, cli, args)
	case "user-rm":
		cmdUserRm(ctx, cli, args)

	default:
		usage()
	}
}

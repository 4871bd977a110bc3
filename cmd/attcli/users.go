package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/attendly/attendly-cli/internal/client"
	"github.com/attendly/attendly-cli/internal/model"
)

// Administration commands over the /users endpoints. The backend enforces the
// admin role; these fail with the server's message for regular accounts.

func cmdUsers(ctx context.Context, cli *client.Client, args []string) {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 10, "page size")
	_ = fs.Parse(args)

	pageRes := value(cli.Employees(ctx, *page, *limit))
	printJSON(*pageRes)
}

func cmdUserAdd(ctx context.Context, cli *client.Client, args []string) {
	fs := flag.NewFlagSet("user-add", flag.ExitOnError)
	email := fs.String("email", "", "email")
	p := fs.String("p", "", "password")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	phone := fs.String("phone", "", "phone")
	position := fs.String("position", "", "position")
	role := fs.Int("role", 2, "role id (1=admin, 2=user)")
	status := fs.Int("status", 1, "status id (1=active, 2=inactive)")
	_ = fs.Parse(args)
	if *email == "" || *p == "" || *first == "" || *last == "" {
		fmt.Fprintln(os.Stderr, "need -email -p -first -last")
		os.Exit(1)
	}

	req := model.EmployeeCreate{
		Email:     *email,
		Password:  *p,
		FirstName: *first,
		LastName:  *last,
		Role:      model.RefID{ID: *role},
		Status:    model.RefID{ID: *status},
	}
	seen := setFlags(fs)
	if seen["phone"] {
		req.Phone = phone
	}
	if seen["position"] {
		req.Position = position
	}

	printJSON(*value(cli.CreateEmployee(ctx, req)))
}

func cmdUserEdit(ctx context.Context, cli *client.Client, args []string) {
	fs := flag.NewFlagSet("user-edit", flag.ExitOnError)
	id := fs.Int64("id", 0, "user id")
	p := fs.String("p", "", "new password")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	phone := fs.String("phone", "", "phone")
	position := fs.String("position", "", "position")
	role := fs.Int("role", 2, "role id")
	status := fs.Int("status", 1, "status id")
	_ = fs.Parse(args)
	if *id == 0 || *first == "" || *last == "" {
		fmt.Fprintln(os.Stderr, "need -id -first -last")
		os.Exit(1)
	}

	req := model.EmployeeUpdate{
		FirstName: *first,
		LastName:  *last,
		Role:      model.RefID{ID: *role},
		Status:    model.RefID{ID: *status},
	}
	seen := setFlags(fs)
	if seen["p"] {
		req.Password = p
	}
	if seen["phone"] {
		req.Phone = phone
	}
	if seen["position"] {
		req.Position = position
	}

	printJSON(*value(cli.UpdateEmployee(ctx, *id, req)))
}

func cmdUserRm(ctx context.Context, cli *client.Client, args []string) {
	fs := flag.NewFlagSet("user-rm", flag.ExitOnError)
	id := fs.Int64("id", 0, "user id")
	_ = fs.Parse(args)
	if *id == 0 {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}

	res := cli.DeleteEmployee(ctx, *id)
	if !res.OK() {
		fmt.Fprintf(os.Stderr, "error: %s (status %d)\n", res.Error, res.Status)
		os.Exit(1)
	}
	fmt.Println("ok")
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/trezcool/masomo-portal/core"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf *core.Config
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  mktoken -identity IDENTITY [-username USERNAME] [-email EMAIL] - mint a session token for local testing")
	fmt.Fprintln(cli.out, "  checkroute -path PATH [-role ROLE] - dry-run the gate's decision for a path")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	mkTokenCmd := flag.NewFlagSet("mktoken", flag.ExitOnError)
	mkTokenIdentity := mkTokenCmd.String("identity", "", "The caller identity (session subject).")
	mkTokenUsername := mkTokenCmd.String("username", "", "Optional username claim.")
	mkTokenEmail := mkTokenCmd.String("email", "", "Optional email claim.")

	checkRouteCmd := flag.NewFlagSet("checkroute", flag.ExitOnError)
	checkRoutePath := checkRouteCmd.String("path", "", "The request path to classify.")
	checkRouteRole := checkRouteCmd.String("role", "", "The caller's role; empty means unauthenticated.")

	switch args[1] {
	case "mktoken":
		if err := mkTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *mkTokenIdentity == "" {
			mkTokenCmd.Usage()
			return errHelp
		}
		return cli.mkToken(*mkTokenIdentity, *mkTokenUsername, *mkTokenEmail)
	case "checkroute":
		if err := checkRouteCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *checkRoutePath == "" {
			checkRouteCmd.Usage()
			return errHelp
		}
		return cli.checkRoute(*checkRoutePath, *checkRouteRole)
	default:
		cli.printUsage()
		return errHelp
	}
}

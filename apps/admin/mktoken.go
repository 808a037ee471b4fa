package main

import (
	"fmt"

	echoapi "github.com/trezcool/masomo-portal/apps/gateway/echo"
)

// mkToken mints a signed session token; handy for curl-ing the gateway in DEV.
func (cli *commandLine) mkToken(identity, username, email string) error {
	claims := echoapi.NewSessionClaims(cli.conf, identity, username, email)
	token, err := echoapi.GenerateSessionToken(cli.conf, claims)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}

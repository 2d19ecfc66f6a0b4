package main

import (
	"fmt"

	echoapi "github.com/aulacheck/aulacheck/apps/api/echo"
	"github.com/aulacheck/aulacheck/core"
)

// genToken prints a signed JWT for the given principal. Meant for DEV and
// smoke tests against a running API; real tokens come from the identity
// provider.
func (cli *commandLine) genToken(id, name, email string) error {
	claims := echoapi.GetPrincipalClaims(core.Principal{ID: id, Name: name, Email: email})
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{Email: email, Role: user.RoleStudent}
	}
	if isAdmin {
		usr.Role = user.RoleAdmin
	}
	usr.IsActive = true

	if err := user.ValidatePassword(pwd, usr); err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}

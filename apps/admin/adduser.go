package main

import (
	"context"
	"fmt"

	"github.com/raresamza/mythesis/core"
	"github.com/raresamza/mythesis/core/user"
)

// addUser updates or creates a user.User, matching on email.
func (cli *commandLine) addUser(name, email, pwd, utype string) error {
	usr := user.User{
		Name:     core.CleanString(name),
		Email:    core.CleanString(email, true /* lower */),
		Password: pwd,
		Type:     utype,
	}
	if !(usr.IsTeacher() || usr.IsStudent()) {
		return fmt.Errorf("unknown user type %q", utype)
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(context.Background(), usr); err != nil {
		return err
	}
	return nil
}

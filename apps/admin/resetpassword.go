package main

import (
	"context"
	"time"
)

// resetPassword sets a new password on the account found by email.
func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()

	if _, err = cli.usrRepo.UpdateUser(ctx, usr, nil); err != nil {
		return err
	}

	logger.Printf("password reset for %s\n", usr.Email)
	return nil
}

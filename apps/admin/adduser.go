package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/user"
)

// addUser creates a new active account or updates an existing one found by email.
func (cli *commandLine) addUser(email, pwd string, professor bool) error {
	ctx := context.Background()

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Email:     email,
			Role:      user.RoleStudent,
			CreatedAt: time.Now().UTC(),
		}
	}
	if professor {
		usr.Role = user.RoleProfessor
	}
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()

	usr, err = cli.usrRepo.UpdateOrCreateUser(ctx, usr)
	if err != nil {
		return err
	}

	logger.Printf("user %s saved\n", usr.Email)
	return nil
}

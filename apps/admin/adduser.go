package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(schoolID, name, uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	// the school must exist
	if _, err := cli.schoolSvc.Get(ctx, schoolID); err != nil {
		return err
	}

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	exists := err == nil
	if err != nil && err != user.ErrNotFound {
		return err
	}
	if exists && usr.SchoolID != schoolID {
		return user.ErrUsernameExists
	}

	now := time.Now().UTC()
	if !exists {
		usr = user.User{
			ID:        uuid.NewString(),
			SchoolID:  schoolID,
			Username:  uname,
			Roles:     []string{core.RoleTeacher},
			CreatedAt: now,
		}
	}
	usr.Name = core.CleanString(name)
	if email != "" {
		usr.Email = email
	}
	if isAdmin {
		usr.Roles = []string{core.RoleAdminOwner}
	}
	usr.IsActive = true
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}

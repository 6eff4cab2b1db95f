package user

import (
	"context"

	"github.com/GausMx/Scoolynk-app-sub000/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a ServiceInterface that sends its mails synchronously.
func NewServiceMock(repo Repository, mailSvc core.EmailService, conf *core.Config) ServiceInterface {
	svc := NewService(repo, mailSvc, conf).(*service)
	return &serviceMock{service: *svc}
}

func (svc *serviceMock) RequestPasswordReset(email string) error {
	usr, err := svc.GetByUsernameOrEmail(email)
	if err != nil {
		return err
	}
	if !usr.IsActive || usr.Email == "" {
		return ErrNotFound
	}
	msg, err := svc.passwordResetMail(usr)
	if err != nil {
		return err
	}
	// run synchronously
	return svc.mailSvc.Send(context.Background(), msg)
}

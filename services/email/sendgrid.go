package emailsvc

import (
	"log"
	"net/http"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/kelasi/core"
)

type sendgridService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	client           *sendgrid.Client
	logger           core.Logger
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) core.EmailService {
	return &sendgridService{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
		client:           sendgrid.NewSendClient(conf.SendgridApiKey),
		logger:           logger,
	}
}

func (svc sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc sendgridService) sendMessage(msg *core.EmailMessage) {
	if msg.HasRecipients() && msg.HasContent() {
		svc.send(*msg)
	}
}

func (svc sendgridService) send(msg core.EmailMessage) {
	sgMsg := new(sgmail.SGMailV3)
	sgMsg.SetFrom(sgmail.NewEmail(svc.defaultFromEmail.Name, svc.defaultFromEmail.Address))
	sgMsg.Subject = svc.subjPrefix + msg.Subject

	p := sgmail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}
	for _, cc := range msg.Cc {
		p.AddCCs(sgmail.NewEmail(cc.Name, cc.Address))
	}
	for _, bcc := range msg.Bcc {
		p.AddBCCs(sgmail.NewEmail(bcc.Name, bcc.Address))
	}
	sgMsg.AddPersonalizations(p)
	sgMsg.AddContent(sgmail.NewContent("text/plain", msg.BodyStr))

	res, err := svc.client.Send(sgMsg)
	if err != nil {
		svc.logError(errors.Wrap(err, "sending email"))
		return
	}
	if res.StatusCode != http.StatusAccepted {
		svc.logError(errors.Errorf("sending email: status %d: %s", res.StatusCode, res.Body))
	}
}

func (svc sendgridService) logError(err error) {
	if svc.logger != nil {
		svc.logger.Error(err.Error(), err)
		return
	}
	log.Printf("%+v", err)
}

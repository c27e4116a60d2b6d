package registration

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
)

const hallTicketTemplate = "hall_ticket"

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound          = errors.New("registration not found")
	ErrAlreadyRegistered = errors.New("duplicate: examinee is already registered for this exam")
	ErrHallTicketExists  = errors.New("duplicate: hall ticket number already in use")
	ErrExamNotFound      = errors.New("exam not found")
	ErrExamineeNotFound  = errors.New("examinee not found")
	ErrExamFull          = errors.New("exam has reached its maximum capacity")
	ErrInvalidTransition = errors.New("registration status cannot be changed")
	ErrInvalidStatus     = errors.New("invalid registration status")
	ErrInvalidID         = errors.New("must be a positive number")
	ErrNoEmail           = errors.New("examinee has no email address")
)

type (
	Repository interface {
		// CreateRegistration maps the unique and foreign key violations to
		// ErrAlreadyRegistered, ErrHallTicketExists, ErrExamNotFound and ErrExamineeNotFound.
		CreateRegistration(ctx context.Context, reg Registration, exec ...core.DBExecutor) (Registration, error)
		GetRegistration(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Registration, error)
		// QueryRegistrations returns the newest registrations first.
		QueryRegistrations(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Registration, error)
		UpdateRegistrationStatus(ctx context.Context, id int, status string, exec ...core.DBExecutor) error
		// CountActiveRegistrations counts the non cancelled registrations of an exam.
		CountActiveRegistrations(ctx context.Context, examID int, exec ...core.DBExecutor) (int, error)
		// LockExamCapacity locks the exam row until the end of the transaction and returns its max capacity.
		LockExamCapacity(ctx context.Context, examID int, exec ...core.DBExecutor) (int, error)
		DeleteRegistrations(ctx context.Context, ids []int, exec ...core.DBExecutor) error
	}

	Service interface {
		Register(ctx context.Context, examineeID, examID int, hallTicket string) (Registration, error)
		Confirm(ctx context.Context, id int) (Registration, error)
		Cancel(ctx context.Context, id int) (Registration, error)
		UpdateStatus(ctx context.Context, id int, status string) (Registration, error)
		GetByID(ctx context.Context, id int) (Registration, error)
		GetByHallTicket(ctx context.Context, number string) (Registration, error)
		QueryByExam(ctx context.Context, examID int) ([]Registration, error)
		QueryByExaminee(ctx context.Context, examineeID int) ([]Registration, error)
		ActiveCount(ctx context.Context, examID int) (int, error)
		Delete(ctx context.Context, ids ...int) error
		HallTicket(ctx context.Context, id int) (HallTicket, error)
		SendHallTicket(ctx context.Context, id int) error
	}

	service struct {
		db           core.TxRunner
		repo         Repository
		examineeRepo examinee.Repository
		examRepo     exam.Repository
		mailSvc      core.EmailService
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(
	db core.TxRunner,
	repo Repository,
	examineeRepo examinee.Repository,
	examRepo exam.Repository,
	mailSvc core.EmailService,
) Service {
	return &service{
		db:           db,
		repo:         repo,
		examineeRepo: examineeRepo,
		examRepo:     examRepo,
		mailSvc:      mailSvc,
	}
}

// Register registers an examinee for an exam, generating the hall ticket number when blank.
// The exam row stays locked while the (examinee, exam) pair is looked up and its active
// registrations are counted against its capacity.
func (svc *service) Register(ctx context.Context, examineeID, examID int, hallTicket string) (Registration, error) {
	var flds []core.FieldError
	if examineeID <= 0 {
		flds = append(flds, core.FieldError{Field: "examinee_id", Error: ErrInvalidID.Error()})
	}
	if examID <= 0 {
		flds = append(flds, core.FieldError{Field: "exam_id", Error: ErrInvalidID.Error()})
	}
	if flds != nil {
		return Registration{}, core.NewValidationError(nil, flds...)
	}

	hallTicket = core.CleanString(hallTicket)
	if hallTicket == "" {
		hallTicket = HallTicketNumber(examID, examineeID)
	}

	var reg Registration
	err := svc.db.RunInTx(ctx, func(ctx context.Context, exec core.DBExecutor) error {
		capacity, err := svc.repo.LockExamCapacity(ctx, examID, exec)
		if err != nil {
			return err
		}
		existing, err := svc.repo.QueryRegistrations(ctx, &QueryFilter{ExamineeID: examineeID, ExamID: examID}, exec)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrAlreadyRegistered
		}
		active, err := svc.repo.CountActiveRegistrations(ctx, examID, exec)
		if err != nil {
			return err
		}
		if active >= capacity {
			return ErrExamFull
		}

		reg, err = svc.repo.CreateRegistration(ctx, Registration{
			ExamineeID:       examineeID,
			ExamID:           examID,
			RegistrationDate: nowFunc().UTC(),
			Status:           StatusRegistered,
			HallTicketNumber: hallTicket,
		}, exec)
		return err
	})
	if err != nil {
		return Registration{}, err
	}
	return reg, nil
}

func (svc *service) Confirm(ctx context.Context, id int) (Registration, error) {
	return svc.UpdateStatus(ctx, id, StatusConfirmed)
}

func (svc *service) Cancel(ctx context.Context, id int) (Registration, error) {
	return svc.UpdateStatus(ctx, id, StatusCancelled)
}

// UpdateStatus moves a registration to status. Setting the current status again is a no-op.
func (svc *service) UpdateStatus(ctx context.Context, id int, status string) (Registration, error) {
	status = core.CleanString(status, true /* lower */)
	if !IsValidStatus(status) {
		return Registration{}, core.NewFieldValidationError("status", ErrInvalidStatus)
	}

	var reg Registration
	err := svc.db.RunInTx(ctx, func(ctx context.Context, exec core.DBExecutor) error {
		var err error
		if reg, err = svc.repo.GetRegistration(ctx, GetFilter{ID: id}, exec); err != nil {
			return err
		}
		if reg.Status == status {
			return nil
		}
		if !CanTransition(reg.Status, status) {
			return ErrInvalidTransition
		}
		if err = svc.repo.UpdateRegistrationStatus(ctx, id, status, exec); err != nil {
			return err
		}
		reg.Status = status
		return nil
	})
	if err != nil {
		return Registration{}, err
	}
	return reg, nil
}

func (svc *service) GetByID(ctx context.Context, id int) (Registration, error) {
	if id <= 0 {
		return Registration{}, ErrNotFound
	}
	return svc.repo.GetRegistration(ctx, GetFilter{ID: id})
}

func (svc *service) GetByHallTicket(ctx context.Context, number string) (Registration, error) {
	number = core.CleanString(number)
	if number == "" {
		return Registration{}, ErrNotFound
	}
	return svc.repo.GetRegistration(ctx, GetFilter{HallTicketNumber: number})
}

func (svc *service) QueryByExam(ctx context.Context, examID int) ([]Registration, error) {
	return svc.repo.QueryRegistrations(ctx, &QueryFilter{ExamID: examID})
}

func (svc *service) QueryByExaminee(ctx context.Context, examineeID int) ([]Registration, error) {
	return svc.repo.QueryRegistrations(ctx, &QueryFilter{ExamineeID: examineeID})
}

func (svc *service) ActiveCount(ctx context.Context, examID int) (int, error) {
	return svc.repo.CountActiveRegistrations(ctx, examID)
}

func (svc *service) Delete(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return svc.repo.DeleteRegistrations(ctx, ids)
}

func (svc *service) HallTicket(ctx context.Context, id int) (HallTicket, error) {
	reg, err := svc.GetByID(ctx, id)
	if err != nil {
		return HallTicket{}, err
	}
	e, err := svc.examineeRepo.GetExaminee(ctx, examinee.GetFilter{ID: reg.ExamineeID})
	if err != nil {
		return HallTicket{}, errors.Wrap(err, "finding examinee")
	}
	ex, err := svc.examRepo.GetExam(ctx, exam.GetFilter{ID: reg.ExamID})
	if err != nil {
		return HallTicket{}, errors.Wrap(err, "finding exam")
	}
	return HallTicket{Registration: reg, Examinee: e, Exam: ex}, nil
}

// SendHallTicket emails the hall ticket to the examinee, with a plain text copy attached.
func (svc *service) SendHallTicket(ctx context.Context, id int) error {
	ticket, err := svc.HallTicket(ctx, id)
	if err != nil {
		return err
	}
	if ticket.Examinee.Email == "" {
		return ErrNoEmail
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: ticket.Examinee.FullName(), Address: ticket.Examinee.Email}},
		Subject:      "Hall Ticket " + ticket.Registration.HallTicketNumber,
		TemplateName: hallTicketTemplate,
		TemplateData: ticket,
		Reference:    ticket.Registration.HallTicketNumber,
	}
	if err = msg.Attach(strings.NewReader(ticket.String()), ticket.Registration.HallTicketNumber+".txt", "text/plain"); err != nil {
		return errors.Wrap(err, "attaching hall ticket")
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

package contacts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ConfirmationNotifier issues a confirmation token for an account and hands
// it to the mailer as a clickable URL.
type ConfirmationNotifier struct {
	verifier   *Verifier
	mailer     Mailer
	confirmURL func(token string) string
	logger     Logger
}

func NewConfirmationNotifier(verifier *Verifier, mailer Mailer, confirmURL func(token string) string) *ConfirmationNotifier {
	return &ConfirmationNotifier{
		verifier:   verifier,
		mailer:     mailer,
		confirmURL: confirmURL,
		logger:     defLogger{},
	}
}

func (n *ConfirmationNotifier) WithLogger(logger Logger) *ConfirmationNotifier {
	n.logger = logger
	return n
}

// Send emails a confirmation link to user. Already confirmed accounts are
// skipped. Failures are logged, never propagated; email delivery must not
// fail the calling flow.
func (n *ConfirmationNotifier) Send(ctx context.Context, user *User) {
	if user == nil || user.Confirmed {
		return
	}

	token, err := n.verifier.IssueConfirmation(user.Email)
	if err != nil {
		n.logger.Error("failed to issue confirmation token", "email", user.Email, "error", err)
		return
	}

	if err := n.mailer.SendConfirmation(ctx, user.Email, user.Username, n.confirmURL(token)); err != nil {
		n.logger.Error("failed to send confirmation email", "email", user.Email, "error", err)
	}
}

type ConfirmEmailMessage struct {
	Token      string `json:"token"`
	OnResponse func(r *ConfirmEmailResponse)
}

func (e ConfirmEmailMessage) Type() string { return "user.confirm_email" }

type ConfirmEmailResponse struct {
	AlreadyConfirmed bool `json:"already_confirmed"`
}

type ConfirmEmailHandler struct {
	repo     RepositoryManager
	verifier *Verifier
}

func NewConfirmEmailHandler(repo RepositoryManager, verifier *Verifier) *ConfirmEmailHandler {
	return &ConfirmEmailHandler{repo: repo, verifier: verifier}
}

func (h *ConfirmEmailHandler) Execute(ctx context.Context, event ConfirmEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during email confirmation")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmEmailHandler) execute(ctx context.Context, event ConfirmEmailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email, err := h.verifier.Redeem(event.Token)
	if err != nil {
		return err
	}

	user, err := h.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrVerificationFailed
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account for confirmation")
	}

	resp := &ConfirmEmailResponse{AlreadyConfirmed: user.Confirmed}

	if !user.Confirmed {
		if err := h.repo.Users().ConfirmEmail(ctx, email); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to confirm email")
		}
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

type RequestConfirmationMessage struct {
	Email      string `json:"email"`
	OnResponse func(alreadyConfirmed bool)
}

func (e RequestConfirmationMessage) Type() string { return "user.request_confirmation" }

type RequestConfirmationHandler struct {
	repo     RepositoryManager
	notifier *ConfirmationNotifier
	logger   Logger
}

func NewRequestConfirmationHandler(repo RepositoryManager, notifier *ConfirmationNotifier) *RequestConfirmationHandler {
	return &RequestConfirmationHandler{
		repo:     repo,
		notifier: notifier,
		logger:   defLogger{},
	}
}

func (h *RequestConfirmationHandler) WithLogger(logger Logger) *RequestConfirmationHandler {
	h.logger = logger
	return h
}

func (h *RequestConfirmationHandler) Execute(ctx context.Context, event RequestConfirmationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during confirmation request")
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestConfirmationHandler) execute(ctx context.Context, event RequestConfirmationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		// an unknown email gets the same outward response as a known one
		if goerrors.IsNotFound(err) {
			h.logger.Warn("confirmation requested for unknown email", "email", event.Email)
			if event.OnResponse != nil {
				event.OnResponse(false)
			}
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account")
	}

	if user.Confirmed {
		if event.OnResponse != nil {
			event.OnResponse(true)
		}
		return nil
	}

	h.notifier.Send(ctx, user)

	if event.OnResponse != nil {
		event.OnResponse(false)
	}

	return nil
}

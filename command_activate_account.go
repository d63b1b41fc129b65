package register

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ActivateAccountMessage struct {
	Code string `json:"code" example:"493025" doc:"Activation code from the email"`
}

func (e ActivateAccountMessage) Type() string { return "user.activate" }

// ActivateAccountHandler flips the owning user to activated and stamps
// the token's validation time. An expired code triggers a single
// replacement token for the same user and still reports failure so the
// caller can tell the user a new code was sent.
type ActivateAccountHandler struct {
	repo     RepositoryManager
	sender   *ActivationSender
	activity ActivitySink
	logger   Logger
}

// NewActivateAccountHandler creates a handler with sane defaults.
func NewActivateAccountHandler(repo RepositoryManager, mailer Mailer, config Config) *ActivateAccountHandler {
	return &ActivateAccountHandler{
		repo:     repo,
		sender:   NewActivationSender(repo, mailer, config),
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit activation events.
func (h *ActivateAccountHandler) WithActivitySink(sink ActivitySink) *ActivateAccountHandler {
	h.activity = normalizeActivitySink(sink)
	h.sender.WithActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ActivateAccountHandler) WithLogger(logger Logger) *ActivateAccountHandler {
	if logger != nil {
		h.logger = logger
		h.sender.WithLogger(logger)
	}
	return h
}

// WithCodeGenerator overrides the activation code source for reissues.
func (h *ActivateAccountHandler) WithCodeGenerator(generate CodeGenerator) *ActivateAccountHandler {
	h.sender.WithCodeGenerator(generate)
	return h
}

func (h *ActivateAccountHandler) Execute(ctx context.Context, event ActivateAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account activation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ActivateAccountHandler) execute(ctx context.Context, event ActivateAccountMessage) error {
	var token *ActivationToken
	var expiredUser *User

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error

		token, err = h.repo.ActivationTokens().GetByCodeTx(ctx, tx, event.Code)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrActivationCodeNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve activation token")
		}

		if token.Expired(time.Now()) {
			// reissue happens after this transaction; expiry detection
			// itself writes nothing and must not be rolled back
			expiredUser = token.User
			if expiredUser == nil {
				expiredUser, err = h.repo.Users().GetByID(ctx, token.UserID.String())
				if err != nil {
					return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for expired token")
				}
			}
			return nil
		}

		if err := h.repo.Users().ActivateTx(ctx, tx, token.UserID); err != nil {
			if repository.IsRecordNotFound(err) {
				return goerrors.New("activation token is not associated with a known user", goerrors.CategoryNotFound).
					WithCode(goerrors.CodeNotFound)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to activate user")
		}

		if err := h.repo.ActivationTokens().MarkValidatedTx(ctx, tx, token.ID, time.Now()); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to activate account")
	}

	if expiredUser != nil {
		if _, err := h.sender.Resend(ctx, expiredUser); err != nil {
			return err
		}

		h.recordActivation(ctx, token, ActivityEventActivationFailure, map[string]any{
			"reason": "code expired, replacement sent",
		})

		return ErrActivationCodeExpired
	}

	h.recordActivation(ctx, token, ActivityEventActivationSuccess, nil)

	return nil
}

func (h *ActivateAccountHandler) recordActivation(ctx context.Context, token *ActivationToken, eventType ActivityEventType, metadata map[string]any) {
	if token == nil {
		return
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["activation_token_id"] = token.ID.String()

	event := ActivityEvent{
		EventType: eventType,
		Actor: ActorRef{
			ID:   token.UserID.String(),
			Type: "user",
		},
		UserID:     token.UserID.String(),
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during activation: %v", err)
	}
}

package register

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// DefaultActivationTTL is how long an activation code stays usable
const DefaultActivationTTL = 15 * time.Minute

// ActivationSender issues activation tokens and hands them to the
// Mailer. It backs both the registration flow and the expired-code
// resend path.
type ActivationSender struct {
	repo     RepositoryManager
	mailer   Mailer
	config   Config
	logger   Logger
	activity ActivitySink
	generate CodeGenerator
}

// NewActivationSender creates a sender with sane defaults.
func NewActivationSender(repo RepositoryManager, mailer Mailer, config Config) *ActivationSender {
	return &ActivationSender{
		repo:     repo,
		mailer:   mailer,
		config:   config,
		logger:   defLogger{},
		activity: noopActivitySink{},
		generate: GenerateActivationCode,
	}
}

// WithLogger overrides the logger used by the sender.
func (s *ActivationSender) WithLogger(logger Logger) *ActivationSender {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink sets the sink used to emit resend events.
func (s *ActivationSender) WithActivitySink(sink ActivitySink) *ActivationSender {
	s.activity = normalizeActivitySink(sink)
	return s
}

// WithCodeGenerator overrides the activation code source.
func (s *ActivationSender) WithCodeGenerator(generate CodeGenerator) *ActivationSender {
	if generate != nil {
		s.generate = generate
	}
	return s
}

// IssueTx creates and persists a fresh activation token for the user and
// dispatches the activation email, all against the given transaction. A
// delivery failure aborts the enclosing transaction so the token (and,
// during registration, the user) never outlives an email that was not sent.
func (s *ActivationSender) IssueTx(ctx context.Context, tx bun.IDB, user *User) (*ActivationToken, error) {
	code, err := s.generate(ActivationCodeLength)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate activation code")
	}

	now := time.Now()
	token := &ActivationToken{
		Code:      code,
		UserID:    user.ID,
		CreatedAt: &now,
		ExpiresAt: now.Add(DefaultActivationTTL),
	}

	created, err := s.repo.ActivationTokens().CreateTx(ctx, tx, token)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist activation token")
	}

	email := ActivationEmail{
		To:            user.Email,
		FullName:      user.FullName(),
		ActivationURL: s.config.GetActivationBaseURL(),
		Code:          code,
		Subject:       ActivationEmailSubject,
	}

	if err := s.mailer.SendActivationEmail(ctx, email); err != nil {
		s.logger.Error("activation email dispatch failed", "error", err, "to", user.Email)
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to deliver activation email").
			WithTextCode(TextCodeDeliveryFailed)
	}

	return created, nil
}

// Resend issues a replacement token in its own transaction. Used when an
// expired code is submitted; the expiry detection that triggered it is a
// separate transaction boundary and is never rolled back.
func (s *ActivationSender) Resend(ctx context.Context, user *User) (*ActivationToken, error) {
	var token *ActivationToken

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		token, err = s.IssueTx(ctx, tx, user)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reissue activation token")
	}

	s.recordResend(ctx, user)

	return token, nil
}

func (s *ActivationSender) recordResend(ctx context.Context, user *User) {
	event := ActivityEvent{
		EventType: ActivityEventActivationResend,
		Actor: ActorRef{
			ID:   user.ID.String(),
			Type: "user",
		},
		UserID: user.ID.String(),
		Metadata: map[string]any{
			"email": user.Email,
		},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(s.activity).Record(ctx, event); err != nil {
		s.logger.Warn("activity sink error during activation resend: %v", err)
	}
}

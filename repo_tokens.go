package register

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MarkTokenValidatedSQL stamps the validation time at most once. The
// validated_at guard makes concurrent activations of the same code lose
// instead of silently overwriting each other.
var MarkTokenValidatedSQL = `UPDATE "activation_tokens" AS "act"
SET
	"validated_at" = ?
WHERE
	"act"."validated_at" IS NULL
AND (
	"act"."id" = ?
) RETURNING *;`

// ActivationTokens is the activation token store contract the
// orchestration layer depends on.
type ActivationTokens interface {
	Create(ctx context.Context, record *ActivationToken, criteria ...repository.InsertCriteria) (*ActivationToken, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *ActivationToken, criteria ...repository.InsertCriteria) (*ActivationToken, error)

	GetByCode(ctx context.Context, code string) (*ActivationToken, error)
	GetByCodeTx(ctx context.Context, tx bun.IDB, code string) (*ActivationToken, error)

	MarkValidated(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkValidatedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, at time.Time) error
}

type activationTokens struct {
	repository.Repository[*ActivationToken]
	db *bun.DB
}

var (
	_ ActivationTokens                        = (*activationTokens)(nil)
	_ repository.Repository[*ActivationToken] = (*activationTokens)(nil)
)

func NewActivationTokensRepository(db *bun.DB) ActivationTokens {
	repo := repository.NewRepository[*ActivationToken](db, repository.ModelHandlers[*ActivationToken]{
		NewRecord: func() *ActivationToken { return &ActivationToken{} },
		GetID: func(t *ActivationToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *ActivationToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "code"
		},
	})

	return &activationTokens{
		Repository: repo,
		db:         db,
	}
}

func (a *activationTokens) Create(ctx context.Context, record *ActivationToken, criteria ...repository.InsertCriteria) (*ActivationToken, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *activationTokens) CreateTx(ctx context.Context, tx bun.IDB, record *ActivationToken, criteria ...repository.InsertCriteria) (*ActivationToken, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *activationTokens) GetByCode(ctx context.Context, code string) (*ActivationToken, error) {
	return a.GetByCodeTx(ctx, a.db, code)
}

// GetByCodeTx loads a token by its code with the owning user attached
func (a *activationTokens) GetByCodeTx(ctx context.Context, tx bun.IDB, code string) (*ActivationToken, error) {
	record := &ActivationToken{}

	err := tx.NewSelect().
		Model(record).
		Relation("User").
		Where("?TableAlias.code = ?", code).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"code": code,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *activationTokens) MarkValidated(ctx context.Context, id uuid.UUID, at time.Time) error {
	return a.MarkValidatedTx(ctx, a.db, id, at)
}

func (a *activationTokens) MarkValidatedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, at time.Time) error {
	res, err := a.Repository.RawTx(ctx, tx, MarkTokenValidatedSQL, at, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return ErrActivationCodeUsed
	}

	return nil
}

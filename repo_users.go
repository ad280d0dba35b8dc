package contacts

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var UpdateRefreshTokenSQL = `UPDATE "users" AS "usr"
SET
	"refresh_token" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var ConfirmEmailSQL = `UPDATE "users" AS "usr"
SET
	"confirmed" = TRUE
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."email" = ?
) RETURNING *;`

var UpdateAvatarSQL = `UPDATE "users" AS "usr"
SET
	"avatar" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."email" = ?
) RETURNING *;`

// Users is the user directory: every account lookup and the single mutable
// piece of session state (the stored refresh token) go through here.
type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)

	UpdateRefreshToken(ctx context.Context, user *User, token *string) error
	UpdateRefreshTokenTx(ctx context.Context, tx bun.IDB, user *User, token *string) error

	ConfirmEmail(ctx context.Context, email string) error
	ConfirmEmailTx(ctx context.Context, tx bun.IDB, email string) error

	UpdateAvatar(ctx context.Context, email, url string) (*User, error)
	UpdateAvatarTx(ctx context.Context, tx bun.IDB, email, url string) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) UpdateRefreshToken(ctx context.Context, user *User, token *string) error {
	return a.UpdateRefreshTokenTx(ctx, a.db, user, token)
}

// UpdateRefreshTokenTx overwrites the stored refresh token, or clears it when
// token is nil. Raw SQL because the ORM update path treats NULL assignments
// as zero values and skips them.
func (a *users) UpdateRefreshTokenTx(ctx context.Context, tx bun.IDB, user *User, token *string) error {
	res, err := a.Repository.RawTx(ctx, tx, UpdateRefreshTokenSQL, token, user.ID.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": user.ID.String(),
			})
	}

	user.RefreshToken = token

	return nil
}

func (a *users) ConfirmEmail(ctx context.Context, email string) error {
	return a.ConfirmEmailTx(ctx, a.db, email)
}

// ConfirmEmailTx marks the account confirmed. Confirming an already
// confirmed account is a no-op success.
func (a *users) ConfirmEmailTx(ctx context.Context, tx bun.IDB, email string) error {
	res, err := a.Repository.RawTx(ctx, tx, ConfirmEmailSQL, email)
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"email": email,
			})
	}

	return nil
}

func (a *users) UpdateAvatar(ctx context.Context, email, url string) (*User, error) {
	return a.UpdateAvatarTx(ctx, a.db, email, url)
}

func (a *users) UpdateAvatarTx(ctx context.Context, tx bun.IDB, email, url string) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, UpdateAvatarSQL, url, email)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"email": email,
			})
	}

	return res[0], nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.Username == "" && strings.Contains(record.Email, "@") {
		record.Username = strings.Split(record.Email, "@")[0]
	}

	if record.Avatar == "" {
		record.Avatar = GravatarURL(record.Email)
	}
}

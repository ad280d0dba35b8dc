package contacts

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// BirthdayWindow is how far ahead the upcoming birthday query looks.
const BirthdayWindow = 7 * 24 * time.Hour

// ErrPhoneNumberExists rejects a second contact with the same phone number
// for the same user.
var ErrPhoneNumberExists = errors.New("phone number already exists", errors.CategoryConflict).
	WithTextCode("PHONE_EXISTS")

// ErrInvalidPhoneNumber rejects numbers that cannot be parsed into E.164.
var ErrInvalidPhoneNumber = errors.New("invalid phone number", errors.CategoryValidation).
	WithTextCode("INVALID_PHONE")

// DefaultPhoneRegion is the region used to parse numbers without a country prefix.
var DefaultPhoneRegion = "US"

// NormalizePhoneNumber parses raw into canonical E.164 form. Duplicate
// detection keys on the normalized value so "+1 (555) 010-0000" and
// "5550100000" collide.
func NormalizePhoneNumber(raw, region string) (string, error) {
	if region == "" {
		region = DefaultPhoneRegion
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", ErrInvalidPhoneNumber
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhoneNumber
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Contacts is the per-user contact store. Every operation takes the acting
// user and scopes its query by user_id.
type Contacts interface {
	repository.Repository[*Contact]

	CreateForUser(ctx context.Context, user *User, record *Contact) (*Contact, error)
	GetForUser(ctx context.Context, user *User, id uuid.UUID) (*Contact, error)
	ListForUser(ctx context.Context, user *User, skip, limit int) ([]*Contact, error)
	UpdateForUser(ctx context.Context, user *User, id uuid.UUID, updated *Contact) (*Contact, error)
	DeleteForUser(ctx context.Context, user *User, id uuid.UUID) (*Contact, error)
	SearchForUser(ctx context.Context, user *User, query string, skip, limit int) ([]*Contact, error)
	UpcomingBirthdays(ctx context.Context, user *User) ([]*Contact, error)
}

type contactsRepo struct {
	repository.Repository[*Contact]
	db     *bun.DB
	region string
}

var (
	_ Contacts                        = (*contactsRepo)(nil)
	_ repository.Repository[*Contact] = (*contactsRepo)(nil)
)

type ContactsOption func(*contactsRepo)

// WithPhoneRegion sets the default region for parsing national numbers.
func WithPhoneRegion(region string) ContactsOption {
	return func(c *contactsRepo) {
		if region != "" {
			c.region = region
		}
	}
}

func NewContactsRepository(db *bun.DB, opts ...ContactsOption) Contacts {
	repo := repository.NewRepository[*Contact](db, repository.ModelHandlers[*Contact]{
		NewRecord: func() *Contact { return &Contact{} },
		GetID: func(c *Contact) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Contact, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
	})

	repoContacts := &contactsRepo{
		Repository: repo,
		db:         db,
		region:     DefaultPhoneRegion,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoContacts)
		}
	}

	return repoContacts
}

func (a *contactsRepo) CreateForUser(ctx context.Context, user *User, record *Contact) (*Contact, error) {
	phone, err := NormalizePhoneNumber(record.PhoneNumber, a.region)
	if err != nil {
		return nil, err
	}
	record.PhoneNumber = phone

	exists, err := a.db.NewSelect().
		Model((*Contact)(nil)).
		Where("?TableAlias.phone_number = ?", record.PhoneNumber).
		Where("?TableAlias.user_id = ?", user.ID).
		Exists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPhoneNumberExists
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.UserID = user.ID

	return a.Repository.Create(ctx, record)
}

func (a *contactsRepo) GetForUser(ctx context.Context, user *User, id uuid.UUID) (*Contact, error) {
	record := &Contact{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.user_id = ?", user.ID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id":      id.String(),
					"user_id": user.ID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *contactsRepo) ListForUser(ctx context.Context, user *User, skip, limit int) ([]*Contact, error) {
	var records []*Contact
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", user.ID).
		Order("created_at ASC").
		Offset(skip).
		Limit(normalizeLimit(limit)).
		Scan(ctx)

	return records, err
}

func (a *contactsRepo) UpdateForUser(ctx context.Context, user *User, id uuid.UUID, updated *Contact) (*Contact, error) {
	record, err := a.GetForUser(ctx, user, id)
	if err != nil {
		return nil, err
	}

	phone, err := NormalizePhoneNumber(updated.PhoneNumber, a.region)
	if err != nil {
		return nil, err
	}

	record.FirstName = updated.FirstName
	record.LastName = updated.LastName
	record.Email = updated.Email
	record.PhoneNumber = phone
	record.Birthday = updated.Birthday

	return a.Repository.Update(ctx, record, repository.UpdateByID(record.ID.String()))
}

func (a *contactsRepo) DeleteForUser(ctx context.Context, user *User, id uuid.UUID) (*Contact, error) {
	record, err := a.GetForUser(ctx, user, id)
	if err != nil {
		return nil, err
	}

	_, err = a.db.NewDelete().
		Model(record).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (a *contactsRepo) SearchForUser(ctx context.Context, user *User, query string, skip, limit int) ([]*Contact, error) {
	pattern := "%" + query + "%"

	var records []*Contact
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", user.ID).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.first_name LIKE ?", pattern).
				WhereOr("?TableAlias.last_name LIKE ?", pattern).
				WhereOr("?TableAlias.email LIKE ?", pattern)
		}).
		Order("created_at ASC").
		Offset(skip).
		Limit(normalizeLimit(limit)).
		Scan(ctx)

	return records, err
}

// UpcomingBirthdays returns contacts whose birthday falls in the next seven
// days. The comparison is on the month-day projection of the stored date,
// ignoring the birth year.
func (a *contactsRepo) UpcomingBirthdays(ctx context.Context, user *User) ([]*Contact, error) {
	today := time.Now()
	until := today.Add(BirthdayWindow)

	var records []*Contact
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", user.ID).
		Where("?TableAlias.birthday IS NOT NULL").
		Where("strftime('%m-%d', ?TableAlias.birthday) BETWEEN ? AND ?",
			today.Format("01-02"), until.Format("01-02")).
		Order("birthday ASC").
		Scan(ctx)

	return records, err
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

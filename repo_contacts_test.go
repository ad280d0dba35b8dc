package contacts_test

import (
	"context"
	"testing"
	"time"

	contacts "github.com/goliatone/go-contacts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContact(first, last, phone string) *contacts.Contact {
	return &contacts.Contact{
		FirstName:   first,
		LastName:    last,
		Email:       first + "@example.com",
		PhoneNumber: phone,
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"national digits", "2125550123", "+12125550123", false},
		{"formatted national", "(212) 555-0123", "+12125550123", false},
		{"already e164", "+12125550123", "+12125550123", false},
		{"garbage", "not a phone", "", true},
		{"too short", "123", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := contacts.NormalizePhoneNumber(tt.raw, "US")
			if tt.wantErr {
				assert.ErrorIs(t, err, contacts.ErrInvalidPhoneNumber)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContactsCreateForUser(t *testing.T) {
	db := setupTestDB(t)
	users := contacts.NewUsersRepository(db)
	repo := contacts.NewContactsRepository(db)
	ctx := context.Background()

	owner := registerTestUser(t, users, "owner@example.com")

	created, err := repo.CreateForUser(ctx, owner, newContact("Ada", "Lovelace", "(212) 555-0123"))
	require.NoError(t, err)
	assert.Equal(t, owner.ID, created.UserID)
	assert.Equal(t, "+12125550123", created.PhoneNumber)

	t.Run("duplicate phone for same user", func(t *testing.T) {
		_, err := repo.CreateForUser(ctx, owner, newContact("Augusta", "King", "2125550123"))
		assert.ErrorIs(t, err, contacts.ErrPhoneNumberExists)
	})

	t.Run("same phone for another user", func(t *testing.T) {
		other := registerTestUser(t, users, "other@example.com")
		_, err := repo.CreateForUser(ctx, other, newContact("Grace", "Hopper", "2125550123"))
		assert.NoError(t, err)
	})

	t.Run("invalid phone", func(t *testing.T) {
		_, err := repo.CreateForUser(ctx, owner, newContact("Bad", "Phone", "xyz"))
		assert.ErrorIs(t, err, contacts.ErrInvalidPhoneNumber)
	})
}

func TestContactsScopedAccess(t *testing.T) {
	db := setupTestDB(t)
	users := contacts.NewUsersRepository(db)
	repo := contacts.NewContactsRepository(db)
	ctx := context.Background()

	owner := registerTestUser(t, users, "owner@example.com")
	other := registerTestUser(t, users, "other@example.com")

	created, err := repo.CreateForUser(ctx, owner, newContact("Ada", "Lovelace", "2125550123"))
	require.NoError(t, err)

	found, err := repo.GetForUser(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// another user cannot see it
	_, err = repo.GetForUser(ctx, other, created.ID)
	assert.True(t, repository.IsRecordNotFound(err))

	// random ids miss
	_, err = repo.GetForUser(ctx, owner, uuid.New())
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestContactsListPagination(t *testing.T) {
	db := setupTestDB(t)
	users := contacts.NewUsersRepository(db)
	repo := contacts.NewContactsRepository(db)
	ctx := context.Background()

	owner := registerTestUser(t, users, "owner@example.com")

	for i, phone := range []string{"2125550101", "2125550102", "2125550103"} {
		_, err := repo.CreateForUser(ctx, owner, newContact("Contact", string(rune('A'+i)), phone))
		require.NoError(t, err)
	}

	all, err := repo.ListForUser(ctx, owner, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := repo.ListForUser(ctx, owner, 1, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestContactsUpdateForUser(t *testing.T) {
	db := setupTestDB(t)
	users := contacts.NewUsersRepository(db)
	repo := contacts.NewContactsRepository(db)
	ctx := context.Background()

	owner := registerTestUser(t, users, "owner@example.com")
	other := registerTestUser(t, users, "other@example.com")

	created, err := repo.CreateForUser(ctx, owner, newContact("Ada", "Lovelace", "2125550123"))
	require.NoError(t, err)

	updated, err := repo.UpdateForUser(ctx, owner, created.ID, newContact("Ada", "King", "2125550199"))
	require.NoError(t, err)
	assert.Equal(t, "King", updated.LastName)
	assert.Equal(t, "+12125550199", updated.PhoneNumber)

	_, err = repo.UpdateForUser(ctx, other, created.ID, newContact("Eve", "Smith", "2125550100"))
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestContactsDeleteForUser(t *testing.T) {
	db := setupTestDB(t)
	users := contacts.NewUsersRepository(db)
	repo := contacts.NewContactsRepository(db)
	ctx := context.Background()

	owner := registerTestUser(t, users, "owner@example.com")

	created, err := repo.CreateForUser(ctx, owner, newContact("Ada", "Lovelace", "2125550123"))
	require.NoError(t, err)

	removed, err := repo.DeleteForUser(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)

	_, err = repo.GetForUser(ctx, owner, created.ID)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestContactsSearchForUser(t *testing.T) {
	db := setupTestDB(t)
	users := contacts.NewUsersRepository(db)
	repo := contacts.NewContactsRepository(db)
	ctx := context.Background()

	owner := registerTestUser(t, users, "owner@example.com")
	other := registerTestUser(t, users, "other@example.com")

	_, err := repo.CreateForUser(ctx, owner, newContact("Ada", "Lovelace", "2125550101"))
	require.NoError(t, err)
	_, err = repo.CreateForUser(ctx, owner, newContact("Grace", "Hopper", "2125550102"))
	require.NoError(t, err)
	_, err = repo.CreateForUser(ctx, other, newContact("Adam", "Smith", "2125550103"))
	require.NoError(t, err)

	byFirst, err := repo.SearchForUser(ctx, owner, "Ada", 0, 10)
	require.NoError(t, err)
	require.Len(t, byFirst, 1)
	assert.Equal(t, "Lovelace", byFirst[0].LastName)

	byLast, err := repo.SearchForUser(ctx, owner, "Hopper", 0, 10)
	require.NoError(t, err)
	require.Len(t, byLast, 1)

	byEmail, err := repo.SearchForUser(ctx, owner, "grace@", 0, 10)
	require.NoError(t, err)
	require.Len(t, byEmail, 1)

	none, err := repo.SearchForUser(ctx, owner, "zeppelin", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestContactsUpcomingBirthdays(t *testing.T) {
	db := setupTestDB(t)
	users := contacts.NewUsersRepository(db)
	repo := contacts.NewContactsRepository(db)
	ctx := context.Background()

	// the month-day window does not wrap across Dec 31
	if time.Now().Format("01-02") > time.Now().Add(contacts.BirthdayWindow).Format("01-02") {
		t.Skip("birthday window wraps the year end")
	}

	owner := registerTestUser(t, users, "owner@example.com")

	withBirthday := func(c *contacts.Contact, daysFromNow int) *contacts.Contact {
		day := time.Now().AddDate(-30, 0, daysFromNow)
		c.Birthday = &day
		return c
	}

	soon, err := repo.CreateForUser(ctx, owner,
		withBirthday(newContact("Soon", "Bday", "2125550101"), 3))
	require.NoError(t, err)

	_, err = repo.CreateForUser(ctx, owner,
		withBirthday(newContact("Far", "Bday", "2125550102"), 60))
	require.NoError(t, err)

	_, err = repo.CreateForUser(ctx, owner, newContact("No", "Bday", "2125550103"))
	require.NoError(t, err)

	upcoming, err := repo.UpcomingBirthdays(ctx, owner)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, soon.ID, upcoming[0].ID)
}

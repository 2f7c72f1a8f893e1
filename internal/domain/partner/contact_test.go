package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contactAccountID = uuid.New()

func createTestContact(t *testing.T) *Contact {
	t.Helper()
	contact, err := NewContact(accountOwnerID, contactAccountID, "Wanjiru", "Kamau", "wanjiru@acme.example")
	require.NoError(t, err)
	return contact
}

func TestNewContact(t *testing.T) {
	t.Run("creates contact for account", func(t *testing.T) {
		contact := createTestContact(t)

		assert.Equal(t, contactAccountID, contact.AccountID)
		assert.Equal(t, "Wanjiru Kamau", contact.FullName())
		assert.False(t, contact.Primary)

		events := contact.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeContactCreated, events[0].EventType())
	})

	t.Run("requires an account", func(t *testing.T) {
		_, err := NewContact(accountOwnerID, uuid.Nil, "Wanjiru", "Kamau", "wanjiru@acme.example")
		assert.Error(t, err)
	})

	t.Run("requires first and last name", func(t *testing.T) {
		_, err := NewContact(accountOwnerID, contactAccountID, "  ", "Kamau", "wanjiru@acme.example")
		assert.Error(t, err)

		_, err = NewContact(accountOwnerID, contactAccountID, "Wanjiru", "", "wanjiru@acme.example")
		assert.Error(t, err)
	})

	t.Run("requires an email", func(t *testing.T) {
		_, err := NewContact(accountOwnerID, contactAccountID, "Wanjiru", "Kamau", " ")
		assert.Error(t, err)
	})
}

func TestContactUpdate(t *testing.T) {
	t.Run("updates descriptive fields", func(t *testing.T) {
		contact := createTestContact(t)

		err := contact.Update("Wanjiru", "Kamau-Otieno", "w.kamau@acme.example", "+254711000000", "Finance Manager", "Finance", "Prefers email")
		require.NoError(t, err)
		assert.Equal(t, "Kamau-Otieno", contact.LastName)
		assert.Equal(t, "Finance Manager", contact.JobTitle)
		assert.Equal(t, "Prefers email", contact.Notes)
	})

	t.Run("rejects blank email", func(t *testing.T) {
		contact := createTestContact(t)
		err := contact.Update("Wanjiru", "Kamau", "", "", "", "", "")
		assert.Error(t, err)
		assert.Equal(t, "wanjiru@acme.example", contact.Email)
	})
}

func TestContactPrimaryFlag(t *testing.T) {
	contact := createTestContact(t)

	contact.MarkPrimary()
	assert.True(t, contact.Primary)

	contact.UnmarkPrimary()
	assert.False(t, contact.Primary)
}

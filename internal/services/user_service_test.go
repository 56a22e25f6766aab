package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecanteen/internal/models"
)

func strPtr(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	users := newMemUsers()
	u := users.put(&models.User{Email: "a@x.com", Fullname: "Ann", Phone: "1"})
	svc := NewUserService(users)
	ctx := context.Background()

	got, err := svc.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Address: strPtr("  Block B  ")})
	require.NoError(t, err)
	assert.Equal(t, "Block B", got.Address)
	assert.Equal(t, "Ann", got.Fullname)
	assert.Equal(t, "1", got.Phone)

	var verr *ValidationError
	_, err = svc.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Fullname: strPtr(" x ")})
	assert.ErrorAs(t, err, &verr)

	_, err = svc.UpdateProfile(ctx, 999, models.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrIdentityNotFound)

	_, err = svc.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}

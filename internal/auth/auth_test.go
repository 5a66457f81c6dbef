package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
	"github.com/MrJamesThe3rd/cuotas/internal/auth"
)

func hash(t *testing.T, password string) string {
	t.Helper()

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(h)
}

func TestStaticCredentials_Verify(t *testing.T) {
	creds := auth.NewStaticCredentials("admin", hash(t, "s3cret"))

	type testCase struct {
		name     string
		username string
		password string
		wantErr  bool
	}

	tests := []testCase{
		{name: "Valid", username: "admin", password: "s3cret"},
		{name: "WrongPassword", username: "admin", password: "nope", wantErr: true},
		{name: "WrongUser", username: "root", password: "s3cret", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := creds.Verify(context.Background(), tt.username, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrUnauthorized)
				return
			}

			assert.NoError(t, err)
		})
	}

	t.Run("EmptyHashDisablesLogin", func(t *testing.T) {
		err := auth.NewStaticCredentials("admin", "").Verify(context.Background(), "admin", "")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
}

func TestService_LoginAndVerify(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	creds := auth.NewStaticCredentials("admin", hash(t, "s3cret"))
	svc := auth.NewService(creds, "test-secret", time.Hour, auth.WithClock(clock))

	token, err := svc.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), token.ExpiresAt)

	claims, err := svc.Verify(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)

	t.Run("BadPassword", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "admin", "wrong")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("Expired", func(t *testing.T) {
		later := auth.NewService(creds, "test-secret", time.Hour, auth.WithClock(func() time.Time {
			return now.Add(2 * time.Hour)
		}))

		_, err := later.Verify(token.Value)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("OtherSecret", func(t *testing.T) {
		other := auth.NewService(creds, "another-secret", time.Hour, auth.WithClock(clock))

		_, err := other.Verify(token.Value)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := svc.Verify("not-a-token")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
}

func TestSubject(t *testing.T) {
	_, ok := auth.Subject(context.Background())
	assert.False(t, ok)

	got, ok := auth.Subject(auth.WithSubject(context.Background(), "admin"))
	assert.True(t, ok)
	assert.Equal(t, "admin", got)
}

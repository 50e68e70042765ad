package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vanvan/vanvan-auth/internal/mocks"
)

func TestCredentialVerifier_Verify(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := mocks.NewMockSecretHasher(ctrl)
	v := NewCredentialVerifier(h)
	ctx := context.Background()

	h.EXPECT().Compare(gomock.Any(), "pw1", "hash").Return(true, nil)
	ok, err := v.Verify(ctx, "pw1", "hash")
	require.NoError(t, err)
	assert.True(t, ok)

	h.EXPECT().Compare(gomock.Any(), "wrong", "hash").Return(false, nil)
	ok, err = v.Verify(ctx, "wrong", "hash")
	require.NoError(t, err, "mismatch is not an error")
	assert.False(t, ok)

	h.EXPECT().Compare(gomock.Any(), "pw1", "bad").Return(false, errors.New("malformed"))
	ok, err = v.Verify(ctx, "pw1", "bad")
	assert.ErrorIs(t, err, ErrVerificationUnavailable)
	assert.False(t, ok)
}

func TestCredentialVerifier_Hash(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := mocks.NewMockSecretHasher(ctrl)
	v := NewCredentialVerifier(h)

	h.EXPECT().Hash(gomock.Any(), "pw1").Return("", errors.New("cost out of range"))
	_, err := v.Hash(context.Background(), "pw1")
	assert.ErrorIs(t, err, ErrVerificationUnavailable)
}

func TestCredentialVerifier_NoHasher(t *testing.T) {
	var v *CredentialVerifier
	_, err := v.Verify(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrVerificationUnavailable)

	_, err = NewCredentialVerifier(nil).Hash(context.Background(), "a")
	assert.ErrorIs(t, err, ErrVerificationUnavailable)
}

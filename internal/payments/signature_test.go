package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"

	signature := ComputeSignature(secret, "go_123", "pay_456")
	require.NoError(t, VerifySignature(secret, "go_123", "pay_456", signature))

	err := VerifySignature(secret, "go_123", "pay_456", "deadbeef")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	// Signature over different ids does not transfer.
	err = VerifySignature(secret, "go_123", "pay_999", signature)
	require.Error(t, err)

	err = VerifySignature(secret, "go_123", "pay_456", "")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	err = VerifySignature("", "go_123", "pay_456", signature)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal))
}

func TestComputeSignatureStable(t *testing.T) {
	a := ComputeSignature("secret", "order", "payment")
	b := ComputeSignature("secret", "order", "payment")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	assert.NotEqual(t, a, ComputeSignature("other", "order", "payment"))
	// The separator prevents ("ab","c") and ("a","bc") from colliding.
	assert.NotEqual(t,
		ComputeSignature("secret", "ab", "c"),
		ComputeSignature("secret", "a", "bc"),
	)
}

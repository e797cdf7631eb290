// internal/domain/transaction_test.go
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionKindDirection(t *testing.T) {
	assert.Equal(t, 1, KindCredit.Direction())
	assert.Equal(t, 1, KindTransferIn.Direction())
	assert.Equal(t, -1, KindDebit.Direction())
	assert.Equal(t, -1, KindTransferOut.Direction())
	assert.Equal(t, 0, KindFunding.Direction())
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusSuccess))
	assert.True(t, StatusSuccess.CanTransitionTo(StatusReversed))

	assert.False(t, StatusPending.CanTransitionTo(StatusReversed))
	assert.False(t, StatusReversed.CanTransitionTo(StatusSuccess))
	assert.False(t, StatusReversed.CanTransitionTo(StatusPending))
	assert.False(t, StatusSuccess.CanTransitionTo(StatusPending))
}

func TestMetadataScanValue(t *testing.T) {
	m := Metadata{"reversed_transaction_id": float64(42), "note": "x"}

	v, err := m.Value()
	require.NoError(t, err)

	var out Metadata
	require.NoError(t, out.Scan(v))
	assert.Equal(t, m, out)
}

func TestMetadataScanNil(t *testing.T) {
	var out Metadata
	require.NoError(t, out.Scan(nil))
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestNilMetadataValue(t *testing.T) {
	var m Metadata
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}

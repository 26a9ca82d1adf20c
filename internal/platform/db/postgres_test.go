package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsMalformedDSN(t *testing.T) {
	_, err := New(context.Background(), "postgres://%zz")
	require.ErrorContains(t, err, "parse config")
}

func TestWithTxRequiresPool(t *testing.T) {
	called := false
	err := WithReadTx(context.Background(), nil, func(pgx.Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
}

//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"marketlevy/internal/ledger/service"
	"marketlevy/internal/ledger/store/storetest"
	"marketlevy/pkg/testutil/containers"
)

func TestPostgresLedger(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)
	ls := &storetest.LedgerSuite{}
	ls.NewStore = func() service.Store {
		require.NoError(ls.T(), pg.TruncateTables(context.Background(), "levy_payments"))
		return New(pg.DB)
	}
	suite.Run(t, ls)
}

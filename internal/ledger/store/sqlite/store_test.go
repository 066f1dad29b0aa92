package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"marketlevy/internal/ledger/service"
	"marketlevy/internal/ledger/store/storetest"
	sqlitedb "marketlevy/internal/platform/storage/sqlite"
)

func TestSQLiteLedger(t *testing.T) {
	ls := &storetest.LedgerSuite{}
	ls.NewStore = func() service.Store {
		st := ls.T()
		db, err := sqlitedb.Open(context.Background(), filepath.Join(st.TempDir(), "ledger.db"))
		require.NoError(st, err)
		st.Cleanup(func() { _ = db.Close() })
		return New(db)
	}
	suite.Run(t, ls)
}

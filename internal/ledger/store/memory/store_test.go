package memory

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"marketlevy/internal/ledger/service"
	"marketlevy/internal/ledger/store/storetest"
)

func TestInMemoryLedger(t *testing.T) {
	suite.Run(t, &storetest.LedgerSuite{
		NewStore: func() service.Store { return New() },
	})
}

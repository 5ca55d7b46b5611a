package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"anoa.com/unibot/internal/bootstrap"
	"anoa.com/unibot/pkg/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB returns a migrated in-memory sqlite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:unibot_test_%d?mode=memory&cache=shared", dbSeq.Add(1))

	db, err := database.Connect(dsn, nil)
	require.NoError(t, err)
	require.NoError(t, bootstrap.InitializeSchema(db))

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

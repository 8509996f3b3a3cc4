package repositories

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"katalog/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestQueryLogger_SkipsLookupMisses(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true, Logger: newQueryLogger(l)})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	buf.Reset()

	_, err = NewGORMBrandRepository(db).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, buf.String())

	err = db.Table("no_such_table").First(&models.Brand{}).Error
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no_such_table")
}

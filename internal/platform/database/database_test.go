package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"sarvuday-server/internal/model"
)

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := New(context.Background(), "sqlite", ":memory:", zap.New(core))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, Migrate(db))
	logs.TakeAll()

	var state model.ConversationState
	err = db.Where("user_id = ? AND conversation_id = ?", 1, "missing").First(&state).Error
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.Zero(t, logs.Len())

	err = db.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)
	entries := logs.All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "gorm", entries[0].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), "oracle", "", nil)
	require.Error(t, err)
}

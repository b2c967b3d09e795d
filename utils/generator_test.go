package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func tokenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec("CREATE TABLE assessments (share_token TEXT)").Error)
	return db
}

func TestGenerateShareTokenFormat(t *testing.T) {
	db := tokenTestDB(t)

	token, err := GenerateShareToken(db)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), token)
}

func TestGenerateShareTokenSkipsTakenTokens(t *testing.T) {
	db := tokenTestDB(t)

	first, err := GenerateShareToken(db)
	require.NoError(t, err)
	require.NoError(t, db.Exec("INSERT INTO assessments (share_token) VALUES (?)", first).Error)

	second, err := GenerateShareToken(db)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestShareLink(t *testing.T) {
	assert.Equal(t, "https://studypal.test/shared/abc123", ShareLink("https://studypal.test", "abc123"))
}

package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"gorm.io/gorm"
)

const shareTokenBytes = 16

// GenerateShareToken returns a random opaque token for a shareable
// assessment link. Tokens are never reused or rotated, so a collision
// against the stored column is retried until a free one is found.
func GenerateShareToken(tx *gorm.DB) (string, error) {
	for {
		b := make([]byte, shareTokenBytes)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		token := hex.EncodeToString(b)

		var count int64
		if err := tx.Table("assessments").Where("share_token = ?", token).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return token, nil
		}
	}
}

// ShareLink builds the full URL distributed to answerers. The stored link
// column holds this exact string, which is what the resolver reconstructs
// when it is handed a bare token segment.
func ShareLink(baseURL, token string) string {
	return fmt.Sprintf("%s/shared/%s", baseURL, token)
}

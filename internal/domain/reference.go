// internal/domain/reference.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reference prefixes by operation.
const (
	RefPrefixCredit   = "CRD"
	RefPrefixDebit    = "DBT"
	RefPrefixTransfer = "TRF"
	RefPrefixFunding  = "FUND"
)

// GenerateReference produces a human-readable transaction reference of the
// form PREFIX-<unix millis>-<6 random uppercase chars>. It holds no shared
// state, so it is safe to call from concurrent operations; the uniqueness
// constraint on the reference column catches the (vanishingly unlikely)
// collision.
func GenerateReference(prefix string) string {
	if prefix == "" {
		prefix = "TXN"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}

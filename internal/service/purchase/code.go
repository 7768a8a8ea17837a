package purchase

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeSuffix   = 6
)

// NewTicketCode returns TICKET-<unix millis>-<6 uppercase alphanumerics>.
func NewTicketCode(now time.Time) (string, error) {
	suffix := make([]byte, codeSuffix)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("ticket code: %w", err)
		}
		suffix[i] = codeAlphabet[n.Int64()]
	}
	return fmt.Sprintf("TICKET-%d-%s", now.UnixMilli(), suffix), nil
}

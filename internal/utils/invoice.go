package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderNumber returns a human readable order reference,
// e.g. ORD-20250110-103000-123-4567.
func GenerateOrderNumber() string {
	return generateNumber("ORD", time.Now().UTC())
}

// GenerateQuoteNumber is the same scheme for quote requests.
func GenerateQuoteNumber() string {
	return generateNumber("QR", time.Now().UTC())
}

func generateNumber(prefix string, now time.Time) string {
	datePart := now.Format("20060102-150405")
	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("%s-%s-%03d-%04d", prefix, datePart, millis, n.Int64())
}

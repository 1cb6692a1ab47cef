package kvstore

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idSuffixLen = 9

// IDGenerator returns record ids of the form <unix-millis>_<9 base36 chars>.
type IDGenerator func() string

// NewIDGenerator uses now for the timestamp part. Two ids from the same
// millisecond differ only by their random suffix; nothing checks for
// collisions.
func NewIDGenerator(now func() time.Time) IDGenerator {
	return func() string {
		return fmt.Sprintf("%d_%s", now().UnixMilli(), randomSuffix())
	}
}

func randomSuffix() string {
	u := uuid.New()
	s := new(big.Int).SetBytes(u[:]).Text(36)
	if len(s) < idSuffixLen {
		s = strings.Repeat("0", idSuffixLen-len(s)) + s
	}
	return s[len(s)-idSuffixLen:]
}

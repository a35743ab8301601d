package utils

import (
	"os"
	"strings"
	"time"

	"cabins/src/config"

	"github.com/google/uuid"
)

func IsProd() bool {
	return os.Getenv("API_ENV") == "production"
}

// NewReferenceCode mints a short booking reference like CB-9F3A27D1.
func NewReferenceCode() string {
	id := uuid.New().String()
	return "CB-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(config.DATE_PARSE_FORMAT, s)
}

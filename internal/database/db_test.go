package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSNCarriesTimeSettings(t *testing.T) {
	got := dsn("mic", "s3cret", "db.local", "3306", "stagelist")
	assert.Contains(t, got, "mic:s3cret@tcp(db.local:3306)/stagelist")
	assert.Contains(t, got, "parseTime=true")
	assert.Contains(t, got, "loc=UTC")
	assert.Contains(t, got, "charset=utf8mb4")
}

func TestDSNOmitsEmptyPassword(t *testing.T) {
	got := dsn("mic", "", "db.local", "3306", "stagelist")
	assert.Contains(t, got, "mic@tcp(db.local:3306)/stagelist")
}

package service

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

const (
	certificateIDPrefix = "CERT"
	// maxCertificateIDAttempts bounds the regenerate-and-recheck loop in Issue.
	maxCertificateIDAttempts = 10

	minCertificateSerial = 10000
	maxCertificateSerial = 99999
)

var certificateIDPattern = regexp.MustCompile(`^CERT-\d{4}-\d{5}$`)

// GenerateCertificateID returns a candidate id of the form CERT-<year>-<5 digits>.
// Candidates are random and must still be checked for uniqueness.
func GenerateCertificateID(now time.Time) string {
	serial := minCertificateSerial + rand.Intn(maxCertificateSerial-minCertificateSerial+1)
	return FormatCertificateID(now.Year(), serial)
}

// FormatCertificateID renders a certificate id from its parts.
func FormatCertificateID(year, serial int) string {
	return fmt.Sprintf("%s-%04d-%05d", certificateIDPrefix, year, serial)
}

// ValidCertificateID reports whether id has the certificate id shape.
func ValidCertificateID(id string) bool {
	return certificateIDPattern.MatchString(id)
}

package export

import (
	"fmt"
	"time"
)

const (
	FormatXLSX = "xlsx"

	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// File is a finished download: bytes plus the two headers the HTTP layer
// needs. The export core knows nothing else about HTTP framing.
type File struct {
	Data     []byte
	Filename string
	MIME     string
}

// Filename builds the content-disposition name:
// {document-type}_{reference-id}_{ISO-date}.{ext}.
func Filename(docType, ref string, at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s", docType, ref, at.UTC().Format("2006-01-02"), ext)
}

// MIMEByFormat returns the MIME type for a supported format, or false for
// anything the serializers cannot produce.
func MIMEByFormat(format string) (string, bool) {
	switch format {
	case FormatXLSX:
		return MIMEXLSX, true
	default:
		return "", false
	}
}

package config

import (
	"os"
	"strings"
)

// UseSAP switches the material lookup service from the in-memory mock
// to the real SAP client.
//
// Set via env:
// - USE_SAP=true
func UseSAP() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("USE_SAP")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// UploadDir is where uploaded report spreadsheets are kept. MOAT batch
// deletion removes the stored file along with its rows.
//
// Set via env:
// - UPLOAD_DIR=/var/lib/qcreport/uploads (default "uploads")
func UploadDir() string {
	dir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if dir == "" {
		return "uploads"
	}
	return dir
}

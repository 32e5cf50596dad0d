package submission

// Outcome classifies one file's download attempt.
type Outcome string

const (
	// OutcomeExisting: the file was already present at the destination and
	// no network call was made.
	OutcomeExisting Outcome = "existing"
	// OutcomeOK: the file was downloaded and written.
	OutcomeOK Outcome = "ok"
	// OutcomeMissing: the server has no file at the registered URL.
	OutcomeMissing Outcome = "missing"
	// OutcomeAccessDenied: the api key was rejected for this file.
	OutcomeAccessDenied Outcome = "access_denied"
	// OutcomeError: the server answered with an unexpected status.
	OutcomeError Outcome = "error"
	// OutcomeDownloadError: the response could not be written locally.
	OutcomeDownloadError Outcome = "download_error"
)

// ChecksumEligible reports whether a file with this outcome is materialized
// at the destination and can be digested.
func (o Outcome) ChecksumEligible() bool {
	return o == OutcomeExisting || o == OutcomeOK
}

// FileDescriptor describes one attachment of a submission. It is created by
// the file list extractor and mutated only to set Outcome and Checksum as
// the download progresses.
type FileDescriptor struct {
	// ID is the internal file id used as key in the linked files map.
	ID string
	// URL is the source of the attachment.
	URL string
	// Size is the byte size declared by the API, zero if absent.
	Size int64
	// Filename is the url-decoded basename of the source URL.
	Filename string

	Outcome  Outcome
	Checksum string

	// fields holds the raw entry so extra metadata the API attaches
	// survives into the output.
	fields map[string]interface{}
}

// OutputFields renders the descriptor for serialization: every raw field
// except the internal-only url and id, plus the derived filename, the
// outcome, and the checksum when one was computed.
func (d *FileDescriptor) OutputFields() map[string]interface{} {
	out := make(map[string]interface{}, len(d.fields)+3)
	for k, v := range d.fields {
		if k == "url" || k == "id" {
			continue
		}
		out[k] = v
	}
	out["filename"] = d.Filename
	out["outcome"] = string(d.Outcome)
	if d.Checksum != "" {
		out["checksum"] = d.Checksum
	}
	return out
}

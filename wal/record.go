package wal

// RecordType identifies the kind of event a Record captures.
type RecordType uint8

const (
	RecordTypePutOperation RecordType = 1
	RecordTypeMarkDone     RecordType = 2
	RecordTypeMarkFailed   RecordType = 3
)

// String returns a human-readable name for the record type.
func (t RecordType) String() string {
	switch t {
	case RecordTypePutOperation:
		return "PutOperation"
	case RecordTypeMarkDone:
		return "MarkDone"
	case RecordTypeMarkFailed:
		return "MarkFailed"
	default:
		return "Unknown"
	}
}

// Record is one WAL entry.
type Record struct {
	Type          RecordType
	TsMs          int64
	ID            string
	Payload       []byte
	Error         string
	NextRetryAtMs int64
}

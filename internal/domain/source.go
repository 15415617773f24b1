package domain

// SourceType identifies a connectable content integration.
type SourceType string

const (
	SourceGmail   SourceType = "gmail"
	SourceOutlook SourceType = "outlook"
	SourceGDrive  SourceType = "gdrive"
	SourceNotion  SourceType = "notion"
)

// DefaultSource is used when a flow does not name a source explicitly.
const DefaultSource = SourceGmail

// AllSources lists every connectable source in display order.
func AllSources() []SourceType {
	return []SourceType{SourceGmail, SourceOutlook, SourceGDrive, SourceNotion}
}

// ParseSourceType validates a raw source identifier. An empty string
// resolves to DefaultSource.
func ParseSourceType(raw string) (SourceType, error) {
	if raw == "" {
		return DefaultSource, nil
	}
	switch st := SourceType(raw); st {
	case SourceGmail, SourceOutlook, SourceGDrive, SourceNotion:
		return st, nil
	default:
		return "", ErrUnknownSource
	}
}

func (s SourceType) String() string { return string(s) }

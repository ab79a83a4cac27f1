package domain

import "errors"

var (
	// ErrFileNotFound is returned when the input dataset path does not exist.
	ErrFileNotFound = errors.New("input file not found")
	// ErrParse indicates the input is not valid delimited text or its header is malformed.
	ErrParse = errors.New("malformed csv input")
	// ErrMissingColumn is returned when the filter column is absent from the header.
	ErrMissingColumn = errors.New("missing column")
	// ErrWrite indicates the filtered dataset could not be written to the output path.
	ErrWrite = errors.New("write output")
	// ErrPublish indicates retained records could not be published to Kafka.
	ErrPublish = errors.New("publish records")
)

// Kind returns a short label for the failure class of err, used in logs and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, ErrWrite):
		return "write"
	case errors.Is(err, ErrPublish):
		return "publish"
	default:
		return "other"
	}
}

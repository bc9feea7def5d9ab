package ocr

import "errors"

// ErrUnavailable is returned when no engine produced usable output; the scan
// cannot proceed and should be retried with a better photo.
var ErrUnavailable = errors.New("no OCR engine produced usable output")

// ErrUnsupportedMode is returned by engines that cannot honor the requested
// segmentation or character-set mode.
var ErrUnsupportedMode = errors.New("unsupported recognition mode")

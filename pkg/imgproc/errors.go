package imgproc

import "errors"

// ErrDegenerateImage is returned when a preprocessing step yields an image
// with zero usable area; the scan must be aborted and retried upstream.
var ErrDegenerateImage = errors.New("preprocessing produced a degenerate image")

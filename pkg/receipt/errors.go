package receipt

import "errors"

// ErrNoItems is returned when a receipt yields zero parseable item lines;
// the scan should be retried with a better photo.
var ErrNoItems = errors.New("no items found on receipt")

// ErrPriceParse marks a single malformed price substring. It is recovered
// line-locally and never aborts the receipt.
var ErrPriceParse = errors.New("malformed price")

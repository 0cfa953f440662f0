package tiles

import (
	"fmt"

	"github.com/paulmach/orb/maptile"
)

// TransportError reports a network failure reaching a tile source.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to send request to %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamStatusError reports a non-success response from a tile
// source.
type UpstreamStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status: %s", e.URL, e.Status)
}

// ContentTypeError reports an unexpected media type from a tile
// source.
type ContentTypeError struct {
	URL         string
	ContentType string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("unexpected content type from %s: %q", e.URL, e.ContentType)
}

// DecodeError reports tile bytes that are not a valid 256x256 raster.
type DecodeError struct {
	Tile maptile.Tile
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode tile %d/%d/%d: %v", e.Tile.Z, e.Tile.X, e.Tile.Y, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// GeometryError reports a grid or crop computation that falls outside
// the assembled canvas.
type GeometryError struct {
	Msg string
}

func (e *GeometryError) Error() string { return e.Msg }

// EncodeError reports a failure serializing the final raster.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode output image: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

package business

import (
	"strconv"
	"strings"

	streamerrors "github.com/Conte777/NewsFlow/services/music-service/internal/domain/stream/errors"
)

// byteRange is a parsed request range; end is -1 when open ended
type byteRange struct {
	start int64
	end   int64
}

// parseRange parses "bytes=<start>-" or "bytes=<start>-<end>". An empty header starts at 0.
func parseRange(header string) (byteRange, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return byteRange{start: 0, end: -1}, nil
	}

	ranges, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return byteRange{}, streamerrors.ErrInvalidRange
	}

	rawStart, rawEnd, ok := strings.Cut(ranges, "-")
	if !ok {
		return byteRange{}, streamerrors.ErrInvalidRange
	}

	start, err := strconv.ParseInt(strings.TrimSpace(rawStart), 10, 64)
	if err != nil {
		return byteRange{}, streamerrors.ErrInvalidRange
	}

	r := byteRange{start: start, end: -1}
	if rawEnd = strings.TrimSpace(rawEnd); rawEnd != "" {
		end, err := strconv.ParseInt(rawEnd, 10, 64)
		if err != nil || end < start {
			return byteRange{}, streamerrors.ErrInvalidRange
		}
		r.end = end
	}

	return r, nil
}

// parseSize parses the size query parameter, ok is false when absent
func parseSize(raw string) (size int64, ok bool, err error) {
	if raw == "" {
		return 0, false, nil
	}

	size, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, streamerrors.ErrInvalidRange
	}
	return size, true, nil
}

// resolveWindow validates the requested window against the file size and returns its length
func resolveWindow(r byteRange, size int64, hasSize bool, total int64) (int64, error) {
	length := total - r.start
	switch {
	case hasSize:
		length = size
	case r.end >= 0:
		length = r.end - r.start + 1
		if r.end >= total {
			length = total - r.start
		}
	}

	if r.start < 0 || r.start >= total || length <= 0 || length > total || length > total-r.start {
		return 0, streamerrors.ErrInvalidRange
	}

	return length, nil
}

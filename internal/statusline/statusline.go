// Package statusline provides pre-compiled HTTP status lines for the
// handful of status codes this server emits, including the trailing line
// terminator, to avoid building them per-response. Lines use a bare "\n"
// terminator rather than "\r\n", matching the rest of this server's wire
// framing.
package statusline

// Codes used by this server.
const (
	OK                    = 200
	BadRequest            = 400
	NotFound              = 404
	TooManyRequests       = 429
	InternalServerError   = 500
	HTTPVersionNotSupported = 505
)

var lines = map[int]string{
	OK:                      "HTTP/1.1 200 OK\n",
	BadRequest:              "HTTP/1.1 400 Bad Request\n",
	NotFound:                "HTTP/1.1 404 Not Found\n",
	TooManyRequests:         "HTTP/1.1 429 Too Many Requests\n",
	InternalServerError:     "HTTP/1.1 500 Internal Server Error\n",
	HTTPVersionNotSupported: "HTTP/1.1 505 HTTP Version Not Supported\n",
}

var reasons = map[int]string{
	OK:                      "OK",
	BadRequest:              "Bad Request",
	NotFound:                "Not Found",
	TooManyRequests:         "Too Many Requests",
	InternalServerError:     "Internal Server Error",
	HTTPVersionNotSupported: "HTTP Version Not Supported",
}

// Line returns the pre-compiled status line (including trailing "\n") for
// code, building one on the fly for any code outside the known table.
func Line(code int) string {
	if l, ok := lines[code]; ok {
		return l
	}
	return "HTTP/1.1 " + itoa(code) + " " + Reason(code) + "\n"
}

// Reason returns the reason phrase for a known code, or "Unknown".
func Reason(code int) string {
	if r, ok := reasons[code]; ok {
		return r
	}
	return "Unknown"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

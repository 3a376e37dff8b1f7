package dur

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

var ErrInvalid = errors.New("duration must be a string or an integer number of nanoseconds")

// Duration decodes from either a time.ParseDuration string ("5s") or integer nanoseconds.
type Duration time.Duration

func (T Duration) Duration() time.Duration {
	return time.Duration(T)
}

func (T Duration) String() string {
	return time.Duration(T).String()
}

func (T *Duration) UnmarshalJSON(bytes []byte) error {
	if len(bytes) == 0 {
		return ErrInvalid
	}

	if bytes[0] == '"' {
		str, err := strconv.Unquote(string(bytes))
		if err != nil {
			return err
		}
		d, err := time.ParseDuration(str)
		if err != nil {
			return err
		}
		*T = Duration(d)
		return nil
	}

	num, err := strconv.ParseInt(string(bytes), 10, 64)
	if err != nil {
		return ErrInvalid
	}
	*T = Duration(num)
	return nil
}

func (T Duration) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, T.String()), nil
}

func (T *Duration) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*T = Duration(d)
	return nil
}

var _ json.Unmarshaler = (*Duration)(nil)
var _ json.Marshaler = Duration(0)

package media

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// apiInt decodes ids and counters sent either as JSON numbers or as strings.
type apiInt int64

func (n *apiInt) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("invalid integer %s", b)
		}
		v = int64(f)
	}
	*n = apiInt(v)
	return nil
}

func toInt64s(in []apiInt) []int64 {
	if in == nil {
		return nil
	}
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

// epochMillis decodes timestamps sent as milliseconds since the epoch.
type epochMillis time.Time

func (t *epochMillis) UnmarshalJSON(b []byte) error {
	var ms apiInt
	if err := ms.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("invalid timestamp %s", b)
	}
	if ms == 0 {
		*t = epochMillis{}
		return nil
	}
	*t = epochMillis(time.UnixMilli(int64(ms)).UTC())
	return nil
}

func (t epochMillis) Time() time.Time { return time.Time(t) }

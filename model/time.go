package model

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Time strings repeat heavily within a feed (every trip on a headway
// shares the same minute patterns), so parsed values are cached.
var timeCache sync.Map // string -> int

// ParseTime converts an HH:MM:SS string to seconds since midnight of
// the service day. Hours may exceed 23 to express post-midnight calls
// on the same service day.
func ParseTime(s string) (int, error) {
	if v, ok := timeCache.Load(s); ok {
		return v.(int), nil
	}

	split := strings.Split(s, ":")
	if len(split) != 3 {
		return 0, fmt.Errorf("found %d parts in '%s'", len(split), s)
	}

	hms := [3]int{}
	for i, str := range split {
		j, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil {
			return 0, fmt.Errorf("non-integer in '%s' pos %d", s, i)
		}
		hms[i] = j
	}

	if hms[0] < 0 || hms[0] > 99 {
		return 0, fmt.Errorf("invalid hour in '%s'", s)
	}
	if hms[1] < 0 || hms[1] > 59 {
		return 0, fmt.Errorf("invalid minute in '%s'", s)
	}
	if hms[2] < 0 || hms[2] > 59 {
		return 0, fmt.Errorf("invalid second in '%s'", s)
	}

	v := hms[0]*3600 + hms[1]*60 + hms[2]
	timeCache.Store(s, v)
	return v, nil
}

// FormatTime renders seconds since midnight as HH:MM:SS. The hour
// field may exceed 23.
func FormatTime(v int) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, v/3600, v/60%60, v%60)
}

package runtime

import (
	"sort"
	"strconv"
)

// isArrayIndexKey reports whether key is a canonical array-index string
// ("0", "1", "2", ... but not "01" or "-1"), per §7.3.25.
func isArrayIndexKey(key string) bool {
	if key == "" {
		return false
	}
	if key == "0" {
		return true
	}
	if key[0] < '1' || key[0] > '9' {
		return false
	}
	for i := 1; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return false
		}
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return false
	}
	return n < 1<<32-1
}

func sortArrayIndexKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.ParseUint(keys[i], 10, 64)
		b, _ := strconv.ParseUint(keys[j], 10, 64)
		return a < b
	})
}

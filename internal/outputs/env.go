package outputs

import (
	"fmt"
	"os"
	"strings"
)

// requiredEnv returns the values of keys in order. Every missing key is named
// in a single error so a sink's configuration can be fixed in one pass.
func requiredEnv(sink string, keys ...string) ([]string, error) {
	values := make([]string, len(keys))
	var missing []string
	for i, key := range keys {
		values[i] = os.Getenv(key)
		if values[i] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s output: %s required", sink, strings.Join(missing, ", "))
	}
	return values, nil
}

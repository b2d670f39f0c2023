// internal/browser/jsexec/call.go
package jsexec

import (
	"fmt"
	"strings"

	json "github.com/json-iterator/go"
)

// Call renders an expression that invokes fn, a JavaScript function
// expression, with args encoded as JSON literals.
func Call(fn string, args ...interface{}) (string, error) {
	encoded := make([]string, 0, len(args))
	for i, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			return "", fmt.Errorf("failed to encode script argument %d: %w", i, err)
		}
		encoded = append(encoded, string(b))
	}
	return fmt.Sprintf("(%s)(%s)", strings.TrimRight(strings.TrimSpace(fn), ";"), strings.Join(encoded, ", ")), nil
}

// MustCall is Call for arguments that always encode, such as strings and
// string slices.
func MustCall(fn string, args ...interface{}) string {
	expr, err := Call(fn, args...)
	if err != nil {
		panic(err)
	}
	return expr
}

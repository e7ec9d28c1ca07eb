// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tracker

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

// NextID returns the identifier following the highest PREFIX-NNN found
// anywhere in text, zero-padded to three digits. It returns PREFIX-001
// when text holds no identifier of that prefix.
//
// NextID is pure. Two callers working on the same file must serialize
// through File.Update or they can compute the same identifier.
func NextID(text string, prefix types.Prefix) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(string(prefix)) + `-(\d+)`)

	highest := 0
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return fmt.Sprintf("%s-%03d", prefix, highest+1)
}

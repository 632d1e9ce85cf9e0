// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

package ingest

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseChangedDate implements §4.4.1: given the raw value of a
// changed: line ("<email> <YYYYMMDD>"), return a last_modified value
// and whether one was produced at all (false means the field should be
// dropped, not set to the input verbatim).
func ParseChangedDate(value string) (string, bool) {
	fields := strings.Fields(value)
	if len(fields) >= 2 {
		tok := fields[1]
		if len(tok) == 8 && isAllDigits(tok) {
			month, _ := strconv.Atoi(tok[4:6])
			day, _ := strconv.Atoi(tok[6:8])
			if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
				return fmt.Sprintf("%s-%d-%d", tok[0:4], month, day), true
			}
		}
	}
	if strings.Contains(value, "@") {
		return "", false
	}
	return value, true
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

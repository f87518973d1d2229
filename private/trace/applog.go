// Copyright 2026 The bierverify Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package trace

import (
	"bufio"
	"io"
	"regexp"
)

// DefaultAppRecordPattern matches the line the receiver logs for every packet
// it gets from the BIER daemon.
const DefaultAppRecordPattern = `Received \d+ bytes from`

var defaultAppRecord = regexp.MustCompile(DefaultAppRecordPattern)

// maxLogLine bounds a single application log line.
const maxLogLine = 1 << 20

// CountRecords returns the number of lines of r that match record. A nil
// record uses DefaultAppRecordPattern. An empty log has zero records.
func CountRecords(r io.Reader, record *regexp.Regexp) (int, error) {
	if record == nil {
		record = defaultAppRecord
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLine)
	var count int
	for scanner.Scan() {
		if record.Match(scanner.Bytes()) {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return count, nil
}

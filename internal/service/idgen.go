package service

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	// expected ids issued in one process run, sizing the filter
	expectedIDsPerRun = 100_000
	idFalsePositive   = 0.0001
)

// IDGenerator derives 8-character transaction ids from a microsecond
// timestamp. Ids issued during the process run are tracked in a bloom
// filter so that two sales in the same microsecond never share an id.
type IDGenerator struct {
	mu     sync.Mutex
	now    func() time.Time
	issued *bloom.BloomFilter
}

// NewIDGenerator creates a generator; a nil clock means time.Now
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{
		now:    now,
		issued: bloom.NewWithEstimates(expectedIDsPerRun, idFalsePositive),
	}
}

// Next returns an id not issued before in this run and for which taken
// reports false. A nil taken accepts every id.
func (g *IDGenerator) Next(taken func(id string) bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now()
	for {
		id := TransactionID(ts)
		if !g.issued.TestString(id) && (taken == nil || !taken(id)) {
			g.issued.AddString(id)
			return id
		}
		// a filter false positive only costs one more attempt
		ts = ts.Add(time.Microsecond)
	}
}

// TransactionID hashes ts at microsecond resolution into an uppercase
// 8-character hex id
func TransactionID(ts time.Time) string {
	stamp := ts.Format("20060102150405") + fmt.Sprintf("%06d", ts.Nanosecond()/1000)
	sum := md5.Sum([]byte(stamp))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}

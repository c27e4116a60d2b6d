// Package dummydb is an in-memory store implementing the core repositories, for tests and local runs.
package dummydb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/result"
	"github.com/trezcool/sems/core/user"
)

type DB struct {
	sync.RWMutex
	txMu sync.Mutex

	pkCount       map[string]int
	users         map[int]*user.User
	examinees     map[int]*examinee.Examinee
	exams         map[int]*exam.Exam
	registrations map[int]*registration.Registration
	results       map[int]*result.Result
}

var _ core.TxRunner = (*DB)(nil) // interface compliance check

func Open() *DB {
	db := &DB{}
	db.Reset()
	return db
}

// Reset empties every table and restarts the primary keys.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()

	db.pkCount = make(map[string]int)
	db.users = make(map[int]*user.User)
	db.examinees = make(map[int]*examinee.Examinee)
	db.exams = make(map[int]*exam.Exam)
	db.registrations = make(map[int]*registration.Registration)
	db.results = make(map[int]*result.Result)
}

// RunInTx serializes fn against other transactions. Writes made by fn are not rolled back on error.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, exec core.DBExecutor) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()
	return fn(ctx, nil)
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK(table string) int {
	db.pkCount[table]++
	return db.pkCount[table]
}

// cascadeRegistrations deletes the registrations matching del along with their results.
// It must be called with the write lock held.
func (db *DB) cascadeRegistrations(del func(reg *registration.Registration) bool) {
	for id, reg := range db.registrations {
		if del(reg) {
			db.cascadeResults(id)
			delete(db.registrations, id)
		}
	}
}

func (db *DB) cascadeResults(registrationID int) {
	for id, res := range db.results {
		if res.RegistrationID == registrationID {
			delete(db.results, id)
		}
	}
}

// comparators return <0, 0 or >0 like strings.Compare.
type comparators map[string]func(i, j int) int

// sortBy orders n items by the first supported orderings, then by the tie comparator.
func sortBy(n int, ordering []core.DBOrdering, cmps comparators, tie func(i, j int) int, swap func(i, j int)) {
	sort.Sort(&sorter{n: n, ordering: ordering, cmps: cmps, tie: tie, swap: swap})
}

type sorter struct {
	n        int
	ordering []core.DBOrdering
	cmps     comparators
	tie      func(i, j int) int
	swap     func(i, j int)
}

func (s *sorter) Len() int      { return s.n }
func (s *sorter) Swap(i, j int) { s.swap(i, j) }

func (s *sorter) Less(i, j int) bool {
	for _, ord := range s.ordering {
		cmp, ok := s.cmps[ord.Field]
		if !ok {
			continue
		}
		if c := cmp(i, j); c != 0 {
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
	}
	return s.tie(i, j) < 0
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func containsFold(search string, values ...string) bool {
	search = strings.ToLower(search)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}

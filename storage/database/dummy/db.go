package dummydb

import (
	"sync"
	"time"

	"github.com/trezcool/internat/core/attendance"
	"github.com/trezcool/internat/core/recap"
	"github.com/trezcool/internat/core/roster"
)

type (
	DB struct {
		students     *studentTable
		staff        *staffTable
		records      *recordTable
		observations *observationTable
		recaps       *recapTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*roster.Student
	}

	staffTable struct {
		sync.RWMutex
		table map[string]*roster.StaffUser
	}

	recordTable struct {
		sync.RWMutex
		table map[string]*attendance.Record
	}

	observationTable struct {
		sync.RWMutex
		table map[obsKey]*attendance.GroupObservation
	}

	recapTable struct {
		sync.RWMutex
		table map[string]*recap.DailyRecap // keyed by day
	}

	obsKey struct {
		day        string
		gradeLevel roster.GradeLevel
		cohort     roster.Cohort
	}
)

func dayKey(day time.Time) string {
	return day.UTC().Format("2006-01-02")
}

func Open() (*DB, error) {
	db := &DB{
		students:     &studentTable{table: make(map[string]*roster.Student)},
		staff:        &staffTable{table: make(map[string]*roster.StaffUser)},
		records:      &recordTable{table: make(map[string]*attendance.Record)},
		observations: &observationTable{table: make(map[obsKey]*attendance.GroupObservation)},
		recaps:       &recapTable{table: make(map[string]*recap.DailyRecap)},
	}
	return db, nil
}
